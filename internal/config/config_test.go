package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, DriverMongo, cfg.Driver)
	assert.Equal(t, "MiniBlog", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MINIBLOG_DRIVER", "badger")
	t.Setenv("MINIBLOG_BADGER_PATH", "/tmp/blog")
	t.Setenv("MINIBLOG_REDIS_ADDR", "localhost:6379")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, DriverBadger, cfg.Driver)
	assert.Equal(t, "/tmp/blog", cfg.Badger.Path)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miniblog.yaml")
	data := []byte("addr: \":8080\"\nmongo:\n  database: Blog\ncache:\n  ttl: 1m\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Blog", cfg.Mongo.Database)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI, "unset keys keep defaults")
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoad_MissingFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	_, err := Load(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "mongo ok",
			cfg:  Config{Addr: ":1", Driver: DriverMongo, Mongo: MongoConfig{URI: "mongodb://x", Database: "db"}},
		},
		{
			name: "badger ok",
			cfg:  Config{Addr: ":1", Driver: DriverBadger, Badger: BadgerConfig{Path: "data"}},
		},
		{
			name:    "unknown driver",
			cfg:     Config{Addr: ":1", Driver: "postgres"},
			wantErr: "unknown driver",
		},
		{
			name:    "mongo without uri",
			cfg:     Config{Addr: ":1", Driver: DriverMongo, Mongo: MongoConfig{Database: "db"}},
			wantErr: "mongo.uri",
		},
		{
			name:    "badger without path",
			cfg:     Config{Addr: ":1", Driver: DriverBadger},
			wantErr: "badger.path",
		},
		{
			name:    "no addr",
			cfg:     Config{Driver: DriverBadger, Badger: BadgerConfig{Path: "data"}},
			wantErr: "addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
