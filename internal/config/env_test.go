package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "STORE_DRIVER", "TX_TIMEOUT", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS"} {
		t.Setenv(k, "")
	}
	env := LoadEnv()
	require.Equal(t, ":8080", env.AppAddr)
	require.Equal(t, "mysql", env.StoreDriver)
	require.Equal(t, 5*time.Second, env.TxTimeout)
	require.Equal(t, []string{"*"}, env.CORSAllowedOrigins)
	require.Equal(t, 5.0, env.RateLimitRPS)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("TX_TIMEOUT", "3")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	env := LoadEnv()
	require.Equal(t, "memory", env.StoreDriver)
	require.Equal(t, 3*time.Second, env.TxTimeout)
	require.Equal(t, 2*time.Minute, env.CacheTTL)
	require.True(t, env.DBAutoMigrate)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, env.CORSAllowedOrigins)
}

func TestDSNEnablesFoundRows(t *testing.T) {
	dsn := DBConfig{Host: "db", Port: 3307, User: "app", Password: "secret", Name: "daladala"}.DSN()
	require.True(t, strings.HasPrefix(dsn, "app:secret@tcp(db:3307)/daladala?"))
	require.Contains(t, dsn, "clientFoundRows=true")
	require.Contains(t, dsn, "parseTime=true")
}
