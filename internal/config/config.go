package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"     validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth"         validate:"required"`
	LLM          LLMConfig          `mapstructure:"llm"          validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Registry     RegistryConfig     `mapstructure:"registry"     validate:"required"`
	Integrations IntegrationsConfig `mapstructure:"integrations" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// LLMConfig contains the chat assistant settings. The API key is optional:
// without it the chat service reports itself as not configured.
type LLMConfig struct {
	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	ModelName      string        `mapstructure:"model_name"      validate:"required"`
	SystemPrompt   string        `mapstructure:"system_prompt"`
	MaxHistory     int           `mapstructure:"max_history"     validate:"gte=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// RedisConfig configures the optional quote cache.
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	QuoteTTL time.Duration `mapstructure:"quote_ttl" validate:"gte=0"`
}

// RegistryConfig tunes health aggregation for registered integrations.
type RegistryConfig struct {
	HealthTimeout       time.Duration `mapstructure:"health_timeout"        validate:"gt=0"`
	MaxConcurrentChecks int           `mapstructure:"max_concurrent_checks" validate:"gt=0"`
	// MonitorInterval of zero disables background polling.
	MonitorInterval time.Duration `mapstructure:"monitor_interval" validate:"gte=0"`
}

// IntegrationsConfig groups the credentials of every third-party vendor.
// None of the credentials are required at load time.
type IntegrationsConfig struct {
	HTTP    VendorHTTPConfig `mapstructure:"http"`
	Privy   PrivyConfig      `mapstructure:"privy"`
	Dynamic DynamicConfig    `mapstructure:"dynamic"`
	Jupiter JupiterConfig    `mapstructure:"jupiter"`
	Stripe  StripeConfig     `mapstructure:"stripe"`
	Moonpay MoonpayConfig    `mapstructure:"moonpay"`
	Sumsub  SumsubConfig     `mapstructure:"sumsub"`
}

// VendorHTTPConfig holds the outbound HTTP settings shared by vendor clients.
type VendorHTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"             validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst"               validate:"gt=0"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
}

// PrivyConfig configures the Privy wallet authentication provider.
type PrivyConfig struct {
	AppID           string `mapstructure:"app_id"`
	AppSecret       string `mapstructure:"app_secret"`
	VerificationKey string `mapstructure:"verification_key"`
	BaseURL         string `mapstructure:"base_url"`
}

// DynamicConfig configures the Dynamic wallet authentication provider.
type DynamicConfig struct {
	EnvironmentID string `mapstructure:"environment_id"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
}

// JupiterConfig configures the Jupiter DEX quote aggregator.
type JupiterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// StripeConfig configures payments and card issuing.
type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	BaseURL   string `mapstructure:"base_url"`
}

// MoonpayConfig configures the fiat on/off ramp.
type MoonpayConfig struct {
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
	BaseURL   string `mapstructure:"base_url"`
	WidgetURL string `mapstructure:"widget_url"`
}

// SumsubConfig configures identity verification.
type SumsubConfig struct {
	AppToken  string `mapstructure:"app_token"`
	SecretKey string `mapstructure:"secret_key"`
	BaseURL   string `mapstructure:"base_url"`
	LevelName string `mapstructure:"level_name"`
}
