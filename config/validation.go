package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const insecureJWTSecret = "your-secret-key"

var (
	// Environment-specific requirements
	requirements = map[Environment][]string{
		Development: {"SERVER_PORT", "DB_DRIVER"},
		Test:        {"SERVER_PORT", "DB_DRIVER"},
		CI:          {"SERVER_PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_NAME", "DB_PASSWORD", "JWT_SECRET"},
		Production:  {"SERVER_PORT", "SERVER_HOST", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_NAME", "DB_PASSWORD", "JWT_SECRET"},
	}
)

func (c *Config) lookup(key string) string {
	switch key {
	case "SERVER_PORT":
		return c.ServerPort
	case "SERVER_HOST":
		return c.ServerHost
	case "DB_DRIVER":
		return c.DBDriver
	case "DB_HOST":
		return c.DBHost
	case "DB_PORT":
		return c.DBPort
	case "DB_USER":
		return c.DBUser
	case "DB_NAME":
		return c.DBName
	case "DB_PASSWORD":
		return c.DBPassword
	case "JWT_SECRET":
		return c.JWTSecret
	}
	return ""
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError

	if cfg.JWTSecret == "" && (cfg.Environment == Development || cfg.Environment == Test) {
		cfg.JWTSecret = insecureJWTSecret
	}

	for _, key := range requirements[cfg.Environment] {
		if cfg.lookup(key) == "" {
			problems = append(problems, ValidationError{Field: key, Message: "is required"})
		}
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.DBDriver == DriverSQLite && cfg.SQLitePath == "" {
		problems = append(problems, ValidationError{Field: "SQLITE_PATH", Message: "is required for the sqlite driver"})
	}

	if cfg.Environment == Production && cfg.JWTSecret == insecureJWTSecret {
		problems = append(problems, ValidationError{Field: "JWT_SECRET", Message: "must not use the development default"})
	}

	if cfg.TokenTTL <= 0 {
		problems = append(problems, ValidationError{Field: "TOKEN_TTL", Message: "must be positive"})
	}

	if len(problems) > 0 {
		lines := make([]string, len(problems))
		for i, p := range problems {
			lines[i] = p.Error()
		}
		return fmt.Errorf("%s", strings.Join(lines, "\n"))
	}

	return nil
}
