package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Game      GameConfig      `toml:"game"`
	Database  DatabaseConfig  `toml:"database"`
	Admin     AdminConfig     `toml:"admin"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name       string `toml:"name"`
	DataDir    string `toml:"data_dir"`    // YAML definitions
	ScriptsDir string `toml:"scripts_dir"` // Lua scripts
	Seed       uint64 `toml:"seed"`        // 0 = derive from the clock
	StartTime  int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress        string        `toml:"bind_address"`
	TickRate           time.Duration `toml:"tick_rate"`
	BroadcastRate      float64       `toml:"broadcast_rate"` // snapshots per second
	ReadTimeout        time.Duration `toml:"read_timeout"`   // payload deadline once an opcode arrived
	WriteTimeout       time.Duration `toml:"write_timeout"`
	InQueueSize        int           `toml:"in_queue_size"`
	OutQueueSize       int           `toml:"out_queue_size"`
	MaxMessagesPerTick int           `toml:"max_messages_per_tick"`
}

// BroadcastInterval is the time between world snapshots.
func (n NetworkConfig) BroadcastInterval() time.Duration {
	if n.BroadcastRate <= 0 {
		return n.TickRate
	}
	return time.Duration(float64(time.Second) / n.BroadcastRate)
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	MessagesPerSecond float64 `toml:"messages_per_second"`
	Burst             int     `toml:"burst"`
}

type GameConfig struct {
	MaxPlayers         int     `toml:"max_players"`
	MaxNameLength      int     `toml:"max_name_length"`
	SpawnRadius        float64 `toml:"spawn_radius"`
	BatteryStart       float64 `toml:"battery_start"`
	BatteryMax         float64 `toml:"battery_max"`
	LeylineChargeRate  float64 `toml:"leyline_charge_rate"`
	BatteryCostPerUnit float64 `toml:"battery_cost_per_unit"`
	ZoneColumns        int     `toml:"zone_columns"`
	ZoneRows           int     `toml:"zone_rows"`
	StashSize          int     `toml:"stash_size"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables session history
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type AdminConfig struct {
	Enabled     bool     `toml:"enabled"`
	BindAddress string   `toml:"bind_address"`
	CORSOrigins []string `toml:"cors_origins"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	File       string `toml:"file"`   // rolling log file, empty = stdout only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

func (c *Config) validate() error {
	if c.Network.TickRate <= 0 {
		return fmt.Errorf("network.tick_rate must be positive, got %s", c.Network.TickRate)
	}
	if c.Network.MaxMessagesPerTick <= 0 {
		return fmt.Errorf("network.max_messages_per_tick must be positive, got %d", c.Network.MaxMessagesPerTick)
	}
	if c.Game.StashSize != 24 {
		return fmt.Errorf("game.stash_size is fixed by the protocol at 24, got %d", c.Game.StashSize)
	}
	if c.Game.ZoneColumns < 2 || c.Game.ZoneRows < 1 {
		return fmt.Errorf("game zone must be at least 2x1, got %dx%d", c.Game.ZoneColumns, c.Game.ZoneRows)
	}
	if c.Game.BatteryStart > c.Game.BatteryMax {
		return fmt.Errorf("game.battery_start %.1f exceeds battery_max %.1f", c.Game.BatteryStart, c.Game.BatteryMax)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:       "SphereDefender",
			DataDir:    "data/yaml",
			ScriptsDir: "scripts",
		},
		Network: NetworkConfig{
			BindAddress:        "0.0.0.0:49179",
			TickRate:           8 * time.Millisecond,
			BroadcastRate:      120,
			ReadTimeout:        300 * time.Millisecond,
			WriteTimeout:       5 * time.Second,
			InQueueSize:        128,
			OutQueueSize:       512,
			MaxMessagesPerTick: 1,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			MessagesPerSecond: 250,
			Burst:             50,
		},
		Game: GameConfig{
			MaxPlayers:         4,
			MaxNameLength:      16,
			SpawnRadius:        60,
			BatteryStart:       100,
			BatteryMax:         200,
			LeylineChargeRate:  2,
			BatteryCostPerUnit: 0.25,
			ZoneColumns:        7,
			ZoneRows:           4,
			StashSize:          24,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Admin: AdminConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1:6060",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}
