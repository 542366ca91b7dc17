package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:           "8486",
		JWTSecret:      "secure-secret-at-least-32-chars-long",
		DBPassword:     "secure-password",
		ModerationMode: ModerationAutoApprove,
		Env:            "test",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(_ *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown moderation mode", func(c *Config) { c.ModerationMode = "manual" }, true},
		{"pre-moderation mode", func(c *Config) { c.ModerationMode = ModerationPreModerate }, false},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production with default DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"production with strong credentials", func(c *Config) {
			c.Env = "production"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_PreModerationEnabled(t *testing.T) {
	c := validConfig()
	assert.False(t, c.PreModerationEnabled())

	c.ModerationMode = ModerationPreModerate
	assert.True(t, c.PreModerationEnabled())
}
