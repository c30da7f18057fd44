package store

// Config contains artifact store configuration.
type Config struct {
	DataDir string `env:"DATA_DIR" envDefault:"."`
}
