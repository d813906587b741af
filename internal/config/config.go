package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverBadger = "badger"

	EnvPrefix = "MINIBLOG"
)

type Config struct {
	Addr            string        `mapstructure:"addr"`
	Driver          string        `mapstructure:"driver"`
	Mongo           MongoConfig   `mapstructure:"mongo"`
	Badger          BadgerConfig  `mapstructure:"badger"`
	Redis           RedisConfig   `mapstructure:"redis"`
	Cache           CacheConfig   `mapstructure:"cache"`
	Trace           bool          `mapstructure:"trace"`
	Dev             bool          `mapstructure:"dev"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type BadgerConfig struct {
	Path       string        `mapstructure:"path"`
	GCInterval time.Duration `mapstructure:"gc_interval"`
}

// RedisConfig is optional: an empty Addr disables the cache, queue and worker.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// SetDefaults registers defaults and environment lookup (MINIBLOG_MONGO_URI
// for mongo.uri and so on) on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":5000")
	v.SetDefault("driver", DriverMongo)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "MiniBlog")
	v.SetDefault("mongo.timeout", 10*time.Second)
	v.SetDefault("badger.path", "./badger-data")
	v.SetDefault("badger.gc_interval", 5*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("trace", false)
	v.SetDefault("dev", false)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads the optional config file and decodes v into a validated Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for the %s driver", DriverMongo)
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo.database is required for the %s driver", DriverMongo)
		}
	case DriverBadger:
		if c.Badger.Path == "" {
			return fmt.Errorf("badger.path is required for the %s driver", DriverBadger)
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverMongo, DriverBadger)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}
