package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. PORTAL_SERVER_PORT or PORTAL_INTEGRATIONS_STRIPE_SECRET_KEY.
const EnvPrefix = "PORTAL"

// defaults lists every key viper should know about. Keys without a default
// value are still listed so that AutomaticEnv can populate them on Unmarshal.
var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.read_timeout":     "15s",
	"server.write_timeout":    "30s",
	"server.shutdown_timeout": "10s",

	"database.url":               "",
	"database.max_open_conns":    10,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": "5m",

	"auth.jwt_secret":                     "",
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,

	"llm.gemini_api_key":  "",
	"llm.model_name":      "gemini-2.0-flash",
	"llm.system_prompt":   "You are the assistant of an ethical bank. Answer questions about the user's finances clearly and never give regulated investment advice.",
	"llm.max_history":     20,
	"llm.request_timeout": "30s",

	"redis.url":       "",
	"redis.quote_ttl": "10s",

	"registry.health_timeout":        "5s",
	"registry.max_concurrent_checks": 8,
	"registry.monitor_interval":      "1m",

	"integrations.http.timeout":             "10s",
	"integrations.http.requests_per_second": 10.0,
	"integrations.http.burst":               20,
	"integrations.http.max_retries":         2,

	"integrations.privy.app_id":           "",
	"integrations.privy.app_secret":       "",
	"integrations.privy.verification_key": "",
	"integrations.privy.base_url":         "https://auth.privy.io",

	"integrations.dynamic.environment_id": "",
	"integrations.dynamic.api_key":        "",
	"integrations.dynamic.base_url":       "https://app.dynamicauth.com",

	"integrations.jupiter.base_url": "https://quote-api.jup.ag/v6",
	"integrations.jupiter.api_key":  "",

	"integrations.stripe.secret_key": "",
	"integrations.stripe.base_url":   "https://api.stripe.com",

	"integrations.moonpay.api_key":    "",
	"integrations.moonpay.secret_key": "",
	"integrations.moonpay.base_url":   "https://api.moonpay.com",
	"integrations.moonpay.widget_url": "https://buy.moonpay.com",

	"integrations.sumsub.app_token":  "",
	"integrations.sumsub.secret_key": "",
	"integrations.sumsub.base_url":   "https://api.sumsub.com",
	"integrations.sumsub.level_name": "basic-kyc-level",
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file instead of
// searching for config.yaml in the working directory. An empty path searches.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a loaded configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
