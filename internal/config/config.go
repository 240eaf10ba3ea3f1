package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STAGECATALOG_API_URL.
const EnvPrefix = "STAGECATALOG"

// Config holds application configuration.
type Config struct {
	API       APIConfig
	Fetch     FetchConfig
	Server    ServerConfig
	Discovery DiscoveryConfig
	Log       LogConfig
}

// APIConfig describes how the browser reaches the catalog store.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// FetchConfig bounds the coordinator's queries.
type FetchConfig struct {
	Timeout time.Duration
}

// ServerConfig holds settings for `serve`.
type ServerConfig struct {
	Addr     string
	DB       string
	Seed     string
	Covers   string
	Name     string
	Announce bool
}

// DiscoveryConfig controls looking up a store on the LAN when no URL is given.
type DiscoveryConfig struct {
	Enabled bool
	Timeout time.Duration
}

// LogConfig selects where and how much is logged.
type LogConfig struct {
	File  string
	Level string
}

// New returns a viper instance carrying defaults and environment bindings.
// Commands bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("api.url", "http://localhost:3004")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("server.addr", ":3004")
	v.SetDefault("server.db", filepath.Join(dataDir(), "catalog.db"))
	v.SetDefault("server.seed", "")
	v.SetDefault("server.covers", "")
	v.SetDefault("server.name", "stageCatalog")
	v.SetDefault("server.announce", false)
	v.SetDefault("discovery.enabled", false)
	v.SetDefault("discovery.timeout", 3*time.Second)
	v.SetDefault("log.file", "debug.log")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and returns the validated result.
// The file is taken from path, then $STAGECATALOG_CONFIG, then
// config.toml in the user config directory; a missing default file is fine.
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "stagecatalog"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks if the configuration values are valid
func (c Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.Discovery.Timeout <= 0 {
		return errors.New("discovery.timeout must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	if c.Server.DB == "" {
		return errors.New("server.db cannot be empty")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps log.level onto a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level)
	}
	return level, nil
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "stagecatalog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "stagecatalog")
}
