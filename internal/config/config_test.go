package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "8001", cfg.AuthPort)
	assert.Equal(t, "8002", cfg.AccountPort)
	assert.Equal(t, "postgres", cfg.DatabaseCfg.Driver)
	assert.Equal(t, time.Hour, cfg.AuthCfg.AccessTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTPCfg.TTL)
	assert.False(t, cfg.OTPCfg.ExposeInResponse)
	assert.Equal(t, 5, cfg.LockoutCfg.Threshold)
	assert.Equal(t, "none", cfg.NotifierCfg.Driver)
	assert.False(t, cfg.RedisCfg.Enabled())
	assert.False(t, cfg.MinioCfg.Enabled())
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "45m")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("OTP_EXPOSE_IN_RESPONSE", "true")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseCfg.Driver)
	assert.Equal(t, 45*time.Minute, cfg.AuthCfg.AccessTokenTTL)
	assert.Equal(t, 3, cfg.LockoutCfg.Threshold)
	assert.True(t, cfg.OTPCfg.ExposeInResponse)
	assert.True(t, cfg.RedisCfg.Enabled())
}

func TestValidate(t *testing.T) {
	t.Run("development fills a secret", func(t *testing.T) {
		cfg, err := New()
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.AuthCfg.JWTSecret)
	})

	t.Run("production requires a secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		cfg, err := New()
		require.NoError(t, err)
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		cfg, err := New()
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")
	})

	t.Run("unknown notifier", func(t *testing.T) {
		t.Setenv("NOTIFIER_DRIVER", "sms")
		cfg, err := New()
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "NOTIFIER_DRIVER")
	})
}

func TestRabbitMQURL(t *testing.T) {
	r := RabbitMQConfig{Host: "mq", Username: "u", Password: "p", Port: "5672"}
	assert.Equal(t, "amqp://u:p@mq:5672/", r.URL())
}
