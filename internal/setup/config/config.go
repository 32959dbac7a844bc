package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var ErrConfigFileNotFound = errors.New("could not find config file in any config path")

// Config represents the entire application configuration.
type Config struct {
	Debug      Debug      `koanf:"debug"`
	Bot        Bot        `koanf:"bot"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	API        API        `koanf:"api"`
	Scheduler  Scheduler  `koanf:"scheduler"`
	Escalation Escalation `koanf:"escalation"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Directory to store log files.
	LogDir string `koanf:"log_dir"`
}

// Bot contains Discord bot specific configuration.
type Bot struct {
	// Discord bot token.
	Token string `koanf:"token"`
	// Role applied to jailed members.
	JailedRoleID uint64 `koanf:"jailed_role_id"`
	// Roles allowed to run moderation commands.
	ModeratorRoleIDs []uint64 `koanf:"moderator_role_ids"`
	// Roles allowed to change escalation thresholds.
	AdminRoleIDs []uint64 `koanf:"admin_role_ids"`
	// Bot owner bypasses all role checks (0 to disable).
	OwnerID uint64 `koanf:"owner_id"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"`
	MaxIdleTime  int    `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// API contains HTTP API server configuration.
type API struct {
	// Listen address, e.g. ":8080".
	ListenAddr string `koanf:"listen_addr"`
	// Requests allowed per window per client IP.
	RateLimit int `koanf:"rate_limit"`
	// Rate limit window in seconds.
	RateWindow int `koanf:"rate_window"`
}

// Scheduler contains expiry scheduler configuration.
type Scheduler struct {
	// Minutes between expiry passes.
	IntervalMinutes int `koanf:"interval_minutes"`
	// Maximum expired sanctions processed concurrently per pass.
	MaxConcurrency int `koanf:"max_concurrency"`
}

// Escalation contains default warning escalation thresholds.
// These are startup defaults; admins can change them at runtime and
// changes are intentionally not persisted.
type Escalation struct {
	// Warnings before an automatic mute.
	MuteCount int `koanf:"mute_count"`
	// Automatic mute duration in minutes.
	MuteDurationMinutes int `koanf:"mute_duration_minutes"`
	// Warnings before an automatic ban.
	BanCount int `koanf:"ban_count"`
}

// LoadConfig loads the configuration from the config file.
// Returns the config along with the directory it was loaded from.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	// Load defaults first so a partial config file still works
	cfg := defaultConfig()

	configPaths := []string{".", "config", os.Getenv("HOME") + "/.warden", "/etc/warden"}

	var (
		loaded    bool
		configDir string
	)

	for _, path := range configPaths {
		configFile := path + "/config.toml"
		if _, err := os.Stat(configFile); err != nil {
			continue
		}

		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", configFile, err)
		}

		loaded = true
		configDir = path

		break
	}

	if !loaded {
		return nil, "", ErrConfigFileNotFound
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The bot token can always be overridden from the environment
	if token := os.Getenv("WARDEN_BOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}

	return cfg, configDir, nil
}

func defaultConfig() *Config {
	return &Config{
		Debug: Debug{
			LogLevel: "info",
			LogDir:   "logs",
		},
		PostgreSQL: PostgreSQL{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			DBName:       "warden",
			MaxOpenConns: 8,
			MaxIdleConns: 8,
			MaxLifetime:  10,
			MaxIdleTime:  10,
		},
		Redis: Redis{
			Host: "localhost",
			Port: 6379,
		},
		API: API{
			ListenAddr: ":8080",
			RateLimit:  30,
			RateWindow: 60,
		},
		Scheduler: Scheduler{
			IntervalMinutes: 30,
			MaxConcurrency:  4,
		},
		Escalation: Escalation{
			MuteCount:           3,
			MuteDurationMinutes: 60,
			BanCount:            5,
		},
	}
}
