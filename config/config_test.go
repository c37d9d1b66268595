package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "ecolibres", cfg.MongoDBName)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(500), cfg.BodyLimitMB)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DefaultAutoReplyTemplateID, cfg.Email.AutoReplyTemplateID)
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.Email.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "https://ecolibres.mx, http://localhost:5173 ,")
	t.Setenv("BODY_LIMIT_MB", "20")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_NAME", "contact")
	t.Setenv("EMAIL_SERVICE", "emailjs")
	t.Setenv("EMAILJS_SERVICE_ID", "service_x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, []string{"https://ecolibres.mx", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(20), cfg.BodyLimitMB)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Postgres.Enabled())
	assert.Contains(t, cfg.Postgres.DSN(), "host=pg")
	assert.Contains(t, cfg.Postgres.DSN(), "dbname=contact")
	assert.True(t, cfg.Email.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing mongo uri", env: map[string]string{"MONGO_URI": ""}},
		{name: "bad body limit", env: map[string]string{"MONGO_URI": "mongodb://x", "BODY_LIMIT_MB": "lots"}},
		{name: "zero body limit", env: map[string]string{"MONGO_URI": "mongodb://x", "BODY_LIMIT_MB": "0"}},
		{name: "bad timeout", env: map[string]string{"MONGO_URI": "mongodb://x", "REQUEST_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
