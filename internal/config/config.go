package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Algorithm AlgorithmConfig `mapstructure:"algorithm" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL points at the PostgreSQL database shared with the main StudyFlow
// backend.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication settings. Tokens are issued by the
// main backend; this service only verifies them with the shared secret.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// AlgorithmConfig contains the tunable scheduling-algorithm parameters.
// Zero values fall back to the algorithm defaults.
type AlgorithmConfig struct {
	MinEaseFactor            float64 `mapstructure:"min_ease_factor"            validate:"omitempty,gt=1"`
	MaxEaseFactor            float64 `mapstructure:"max_ease_factor"            validate:"omitempty,gtfield=MinEaseFactor"`
	BaseEaseFactor           float64 `mapstructure:"base_ease_factor"           validate:"omitempty,gt=1"`
	RetentionReviewThreshold float64 `mapstructure:"retention_review_threshold" validate:"omitempty,gt=0,lt=1"`
}
