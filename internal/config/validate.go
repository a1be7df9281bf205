package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// Encryption key: base64 encoding of exactly 32 bytes
	if c.Encryption.Key == "" {
		errs = append(errs, "ENCRYPTION_KEY is required")
	} else if raw, err := base64.StdEncoding.DecodeString(c.Encryption.Key); err != nil {
		errs = append(errs, "ENCRYPTION_KEY must be valid base64")
	} else if len(raw) != 32 {
		errs = append(errs, fmt.Sprintf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(raw)))
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Daily quotas
	if c.Limits.AuthDaily < 1 {
		errs = append(errs, "LIMITS_AUTH_DAILY must be a positive integer")
	}
	if c.Limits.GuestDaily < 1 {
		errs = append(errs, "LIMITS_GUEST_DAILY must be a positive integer")
	}
	if c.Limits.ProDaily < 1 {
		errs = append(errs, "LIMITS_PRO_DAILY must be a positive integer")
	}
	if c.Limits.AuthDaily < c.Limits.GuestDaily {
		errs = append(errs, fmt.Sprintf("LIMITS_AUTH_DAILY (%d) must be >= LIMITS_GUEST_DAILY (%d)",
			c.Limits.AuthDaily, c.Limits.GuestDaily))
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
