package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "sams_db", cfg.Database.Name)
	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "./documents", cfg.Storage.LocalBaseDir)
	assert.Equal(t, "sams-documents", cfg.Storage.S3Bucket)
}

func TestLoadRequiresDatabasePassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestDatabaseDSNEscapesPassword(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.example.org",
		Port:     5432,
		Username: "sams",
		Password: "p@ss/word",
		Name:     "sams_db",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://sams:")
	assert.Contains(t, dsn, "@db.example.org:5432/sams_db")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word")
}
