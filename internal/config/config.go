package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		// Mock swaps the HTTP provider for canned data.
		Mock bool `yaml:"mock"`
	} `yaml:"provider"`
	Throttle struct {
		MinutePerProvider int `yaml:"minute_per_provider"`
		DailyPerResource  int `yaml:"daily_per_resource"`
	} `yaml:"throttle"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Pipeline struct {
		Workers     int      `yaml:"workers"`
		TaskTimeout Duration `yaml:"task_timeout"`
		RunTimeout  Duration `yaml:"run_timeout"`
	} `yaml:"pipeline"`
	Market struct {
		Timezone       string  `yaml:"timezone"`
		BenchmarkIndex string  `yaml:"benchmark_index"`
		VolThreshold   float64 `yaml:"volatility_threshold"`
	} `yaml:"market"`
	Schedule struct {
		VolatilityCron string `yaml:"volatility_cron"`
		SweepCron      string `yaml:"sweep_cron"`
		StatsCron      string `yaml:"stats_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RADAR_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("RADAR_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("RADAR_MOCK"); v != "" {
		cfg.Provider.Mock = v == "1" || v == "true"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Throttle.MinutePerProvider == 0 {
		cfg.Throttle.MinutePerProvider = 100
	}
	if cfg.Throttle.DailyPerResource == 0 {
		cfg.Throttle.DailyPerResource = 180
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.TaskTimeout == 0 {
		cfg.Pipeline.TaskTimeout = Duration(10 * time.Second)
	}
	if cfg.Pipeline.RunTimeout == 0 {
		cfg.Pipeline.RunTimeout = Duration(2 * time.Minute)
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "Asia/Shanghai"
	}
	if cfg.Market.BenchmarkIndex == "" {
		cfg.Market.BenchmarkIndex = "000001.SH"
	}
	if cfg.Market.VolThreshold == 0 {
		cfg.Market.VolThreshold = 0.7
	}
	if cfg.Schedule.VolatilityCron == "" {
		cfg.Schedule.VolatilityCron = "0 */30 * * * *"
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "0 10 * * * *"
	}
	if cfg.Schedule.StatsCron == "" {
		cfg.Schedule.StatsCron = "0 0 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_radar.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if !c.Provider.Mock && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required unless provider.mock is set")
	}
	if c.Throttle.MinutePerProvider <= 0 {
		return fmt.Errorf("throttle.minute_per_provider must be positive")
	}
	if c.Throttle.DailyPerResource <= 0 {
		return fmt.Errorf("throttle.daily_per_resource must be positive")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	return nil
}
