package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_THINKING_BUDGET", "")
	t.Setenv("MAX_IMAGE_BYTES", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int32(2048), cfg.GeminiThinkingBudget)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxImageBytes)
	assert.Equal(t, "gemini-flash-lite-latest", cfg.GeminiFastModel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.IdentityConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_THINKING_BUDGET", "1024")
	t.Setenv("RATE_LIMIT_AI", "10s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.vn, https://b.vn")
	t.Setenv("TEACHER_EMAILS", "Co.Lan@school.edu.vn,thay.minh@school.edu.vn")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int32(1024), cfg.GeminiThinkingBudget)
	assert.Equal(t, 10*time.Second, cfg.RateLimitAI)
	assert.Equal(t, []string{"https://a.vn", "https://b.vn"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsTeacherEmail("co.lan@school.edu.vn"))
	assert.True(t, cfg.IsTeacherEmail(" THAY.MINH@school.edu.vn"))
	assert.False(t, cfg.IsTeacherEmail("hocsinh@school.edu.vn"))
	assert.True(t, cfg.IdentityConfigured())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_AI", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_AI")
}
