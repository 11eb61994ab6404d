package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all eventoo configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Simulation SimulationConfig `toml:"simulation"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Redis      RedisConfig      `toml:"redis"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds defaults for new plans and the snapshot database.
type GeneralConfig struct {
	DefaultDestination string `toml:"default_destination,omitempty"`
	DefaultPeople      int    `toml:"default_people"`
	DBPath             string `toml:"db_path,omitempty"`
}

// DaemonConfig holds settings for the long-running simulation host.
type DaemonConfig struct {
	Addr            string   `toml:"addr"`
	IntervalSeconds int      `toml:"interval_seconds"`
	Speed           float64  `toml:"speed"` // simulated seconds per real second
	EventsBuffer    int      `toml:"events_buffer"`
	CORSOrigins     []string `toml:"cors_origins,omitempty"`
}

// RedisConfig controls event fan-out to Redis pub/sub.
type RedisConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url,omitempty"`
	Channel string `toml:"channel"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultPeople: 25,
		},
		Simulation: SimulationConfig{
			Seed:      1,
			StepHours: 6,
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8742",
			IntervalSeconds: 5,
			Speed:           3600,
			EventsBuffer:    200,
		},
		Redis: RedisConfig{
			URL:     "redis://127.0.0.1:6379/0",
			Channel: "eventoo:events",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "eventoo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "eventoo")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none)
// into the process environment. Missing files are ignored; variables that are
// already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from EVENTOO_* environment variables.
func ApplyEnv(cfg *Config) {
	if url := os.Getenv("EVENTOO_REDIS_URL"); url != "" {
		cfg.Redis.URL = url
		cfg.Redis.Enabled = true
	}
	if lvl := os.Getenv("EVENTOO_LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = strings.ToLower(lvl)
	}
	if db := os.Getenv("EVENTOO_DB"); db != "" {
		cfg.General.DBPath = db
	}
}
