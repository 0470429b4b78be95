package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GO_ENV", "dev")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/lumiere?sslmode=disable")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("CURRENCY", "")
	t.Setenv("PUBLIC_BASE_URL", "")
}

func TestLoad_WithDatabaseURL(t *testing.T) {
	setBase(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, "postgres://u:p@localhost:5432/lumiere?sslmode=disable", cfg.PostgresDSN())
}

func TestLoad_RequiredKeys(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"PORT", "PORT is required"},
		{"JWT_SECRET", "JWT_SECRET is required"},
		{"GO_ENV", "GO_ENV is required"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			setBase(t)
			t.Setenv(tc.key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_PostgresFieldsWhenNoURL(t *testing.T) {
	setBase(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_PORT", "abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PORT must be number")

	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_DB", "lumiere")
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=lumiere sslmode=disable", cfg.PostgresDSN())
}

func TestLoad_AdminPair(t *testing.T) {
	setBase(t)
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	_, err := Load()
	assert.Error(t, err)
}
