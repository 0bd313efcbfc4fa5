package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ROUTECTL"

// Config is the routectl configuration, read from routectl.yaml, ROUTECTL_*
// environment variables and command line flags, in increasing priority.
type Config struct {
	Routes string            `mapstructure:"routes"`
	Prefix string            `mapstructure:"prefix"`
	Debug  bool              `mapstructure:"debug"`
	Types  map[string]string `mapstructure:"types"` // keys are lower-cased by viper
	Log    LogConfig         `mapstructure:"log"`
	Cache  CacheConfig       `mapstructure:"cache"`
	DB     DBConfig          `mapstructure:"db"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig enables the route table cache.
type CacheConfig struct {
	Key   string        `mapstructure:"key"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

// RedisConfig locates the Redis server holding cached tables.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DBConfig locates the sqlite database used to resolve model segments.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// setDefaults registers every key so that ROUTECTL_* variables reach
// Unmarshal even when no config file mentions them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("routes", "routes.yaml")
	v.SetDefault("prefix", "")
	v.SetDefault("debug", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("cache.key", "routes")
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "reroute")
	v.SetDefault("db.path", "")
}

// loadConfig reads the config file (explicit path or ./routectl.*), the
// environment and the flags bound to v.
func loadConfig(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"routes":    "routes",
		"prefix":    "prefix",
		"debug":     "debug",
		"log.level": "log-level",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("routectl")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// newLogger builds the command logger from the log section.
func newLogger(cfg LogConfig) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(os.Stderr)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return logger, nil
}
