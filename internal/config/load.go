package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by the service,
// e.g. STUDYFLOW_SERVER_PORT or STUDYFLOW_DATABASE_URL.
const envPrefix = "STUDYFLOW"

// Load reads configuration from environment variables and optionally a
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file. Returns a populated Config
// struct or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values for all optional settings. Keys must
// be registered here for AutomaticEnv to pick up their environment
// counterparts during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("algorithm.min_ease_factor", 0.0)
	v.SetDefault("algorithm.max_ease_factor", 0.0)
	v.SetDefault("algorithm.base_ease_factor", 0.0)
	v.SetDefault("algorithm.retention_review_threshold", 0.0)
}

// validate checks the unmarshalled configuration against the struct tags and
// returns a descriptive error for the first failing field.
func validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			return fmt.Errorf("invalid configuration: field %s failed on the %q rule",
				first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
