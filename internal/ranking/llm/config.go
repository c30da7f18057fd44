package llm

// Config contains ranking adapter configuration.
// SDK-facing fields map to OpenAI-compatible client options:
//   - APIKey: Maps to option.WithAPIKey()
//   - BaseURL: Maps to option.WithBaseURL()
//   - Timeout: Maps to option.WithRequestTimeout() (in seconds)
//   - MaxRetries: Maps to option.WithMaxRetries()
type Config struct {
	Enabled    bool   `env:"RANKING_ENABLED"     envDefault:"true"`
	APIKey     string `env:"RANKING_API_KEY"`
	Model      string `env:"RANKING_MODEL"       envDefault:"openrouter/auto"`
	BaseURL    string `env:"RANKING_BASE_URL"    envDefault:"https://openrouter.ai/api/v1"`
	Timeout    int    `env:"RANKING_TIMEOUT"     envDefault:"60"`
	MaxRetries int    `env:"RANKING_MAX_RETRIES" envDefault:"2"`
}
