package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("AMADEUS_CLIENT_ID", "id")
	t.Setenv("AMADEUS_CLIENT_SECRET", "secret")
	t.Setenv("AMADEUS_ENV", "production")
	t.Setenv("ENRICH_WORKERS", "6")
	t.Setenv("ENRICH_CACHE_TTL_SECONDS", "60")

	c := Load()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "id", c.AmadeusClientID)
	assert.Equal(t, "production", c.AmadeusEnv)
	assert.Equal(t, 5, c.AmadeusRPS)
	assert.Equal(t, "llama-3.1-8b-instant", c.GroqModel)
	assert.Equal(t, 3, c.LLMMaxAttempts)
	assert.Equal(t, 6, c.Workers)
	assert.Equal(t, time.Minute, c.CacheTTL)
	assert.Equal(t, 30*time.Second, c.ProviderTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "tripsearch.yaml")
	require.NoError(t, os.WriteFile(f, []byte("HTTP_ADDR: \":9090\"\nGROQ_MODEL: llama-3.3-70b-versatile\n"), 0o600))
	t.Setenv("CONFIG_FILE", f)
	t.Setenv("GROQ_MODEL", "")

	c := Load()
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, "llama-3.3-70b-versatile", c.GroqModel)
}

func TestFromViper_ExplicitValues(t *testing.T) {
	v := viper.New()
	v.Set("REDIS_ADDR", "localhost:6380")
	v.Set("PROVIDER_TIMEOUT_SECONDS", 5)

	c := FromViper(v)
	assert.Equal(t, "localhost:6380", c.RedisAddr)
	assert.Equal(t, 5*time.Second, c.ProviderTimeout)
	assert.Equal(t, "test", c.AmadeusEnv)
}
