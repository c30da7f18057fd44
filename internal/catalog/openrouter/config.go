package openrouter

// Config contains OpenRouter catalog client configuration.
//   - APIKey: optional bearer token; raises rate limits but is not required
//     for the public catalog
//   - BaseURL: API root without a trailing slash
//   - Timeout: per-request timeout in seconds
//   - MaxRetries: additional attempts after the first failure
type Config struct {
	APIKey     string `env:"OPENROUTER_API_KEY"`
	BaseURL    string `env:"OPENROUTER_BASE_URL"    envDefault:"https://openrouter.ai/api/v1"`
	Timeout    int    `env:"OPENROUTER_TIMEOUT"     envDefault:"30"`
	MaxRetries int    `env:"OPENROUTER_MAX_RETRIES" envDefault:"3"`
}
