// Package config loads and validates the service configuration from
// environment variables (STUDYFLOW_ prefix) and an optional config file,
// giving the rest of the application type-safe access to server, database,
// auth, and algorithm settings.
package config
