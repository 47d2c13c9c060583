package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultServer      = "http://localhost:3179"
	defaultUIRoot      = "/ui/"
	defaultDBPath      = "pkbrowse.db"
	defaultFanoutLimit = 8
	defaultSearchLimit = 50
)

// Config holds runtime settings for the CLI app.
type Config struct {
	Server      string `toml:"server"`
	User        string `toml:"user"`
	Password    string `toml:"password"`
	DBPath      string `toml:"db_path"`
	UIRoot      string `toml:"ui_root"`
	FanoutLimit int    `toml:"fanout_limit"`
	SearchLimit int    `toml:"search_limit"`
	Debug       bool   `toml:"debug"`
	LogPath     string `toml:"log_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server:      defaultServer,
		UIRoot:      defaultUIRoot,
		DBPath:      defaultDBPath,
		FanoutLimit: defaultFanoutLimit,
		SearchLimit: defaultSearchLimit,
	}
}

// DefaultPath is ~/.config/pkbrowse/config.toml, or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pkbrowse", "config.toml")
}

// Load reads defaults, then the TOML file at path (a missing file is
// fine), then PKBROWSE_* environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	cfg.Server = strings.TrimRight(cfg.Server, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv is Load with the default config path.
func LoadFromEnv() (Config, error) {
	return Load(DefaultPath())
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"PKBROWSE_SERVER", &c.Server},
		{"PKBROWSE_USER", &c.User},
		{"PKBROWSE_PASSWORD", &c.Password},
		{"PKBROWSE_DB_PATH", &c.DBPath},
		{"PKBROWSE_UI_ROOT", &c.UIRoot},
		{"PKBROWSE_LOG_PATH", &c.LogPath},
	} {
		if s := os.Getenv(v.name); s != "" {
			*v.dst = s
		}
	}
	if s := os.Getenv("PKBROWSE_FANOUT_LIMIT"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("PKBROWSE_FANOUT_LIMIT must be a number: %s", s)
		}
		c.FanoutLimit = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.Server == "" {
		return errors.New("server is required")
	}
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server must be an http(s) URL: %s", c.Server)
	}
	if c.Password != "" && c.User == "" {
		return errors.New("user is required when password is set")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if !strings.HasPrefix(c.UIRoot, "/") {
		return fmt.Errorf("ui_root must start with '/': %s", c.UIRoot)
	}
	if c.FanoutLimit < 1 {
		return fmt.Errorf("fanout_limit must be positive: %d", c.FanoutLimit)
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("search_limit must be positive: %d", c.SearchLimit)
	}
	return nil
}
