package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "prism",
			Password: "secret", Name: "prism", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret:  "access-secret-that-is-at-least-32-chars!",
			RefreshSecret: "refresh-secret-that-is-at-least-32-chr!",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
		},
		Encryption: EncryptionConfig{Key: base64.StdEncoding.EncodeToString(make([]byte, 32))},
		Limits:     LimitsConfig{AuthDaily: 1000, GuestDaily: 5, ProDaily: 500},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_JWTSecretsMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "the-same-secret-that-is-at-least-32-chars!"
	cfg.JWT.RefreshSecret = "the-same-secret-that-is-at-least-32-chars!"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected 'must differ' error, got: %v", err)
	}
}

func TestValidate_EncryptionKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Encryption.Key = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ENCRYPTION_KEY is required") {
		t.Fatalf("expected ENCRYPTION_KEY required error, got: %v", err)
	}
}

func TestValidate_EncryptionKeyNotBase64(t *testing.T) {
	cfg := validConfig()
	cfg.Encryption.Key = "not-valid-base64!!!"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "valid base64") {
		t.Fatalf("expected base64 error, got: %v", err)
	}
}

func TestValidate_EncryptionKeyWrongLength(t *testing.T) {
	cfg := validConfig()
	cfg.Encryption.Key = base64.StdEncoding.EncodeToString(make([]byte, 16))
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Fatalf("expected 32 bytes error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_GuestLimitAboveAuthLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Limits.AuthDaily = 5
	cfg.Limits.GuestDaily = 100
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LIMITS_AUTH_DAILY") {
		t.Fatalf("expected LIMITS_AUTH_DAILY error, got: %v", err)
	}
}

func TestValidate_NonPositiveLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Limits.ProDaily = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LIMITS_PRO_DAILY") {
		t.Fatalf("expected LIMITS_PRO_DAILY error, got: %v", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	cfg.Encryption.Key = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "DB_PASSWORD") || !strings.Contains(err.Error(), "ENCRYPTION_KEY") {
		t.Fatalf("expected both errors collected, got: %v", err)
	}
}
