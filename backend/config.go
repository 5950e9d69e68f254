package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

type Config struct {
	AiTimeBudgetMs       int      `json:"ai_time_budget_ms"`
	AiMaxDepth           int      `json:"ai_max_depth"`
	AiLogSearchStats     bool     `json:"ai_log_search_stats"`
	AiGhostThrottleMs    int      `json:"ai_ghost_throttle_ms"`
	ServerAddr           string   `json:"server_addr"`
	TickIntervalMs       int      `json:"tick_interval_ms"`
	LogLevel             string   `json:"log_level"`
	LogPretty            bool     `json:"log_pretty"`
	KafkaBrokers         []string `json:"kafka_brokers"`
	KafkaTopic           string   `json:"kafka_topic"`
	SelfPlayGames        int      `json:"self_play_games"`
	SelfPlayOpeningPlies int      `json:"self_play_opening_plies"`
	Seed                 uint64   `json:"seed"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		AiTimeBudgetMs:    10000,
		AiMaxDepth:        0, // time bound only
		AiLogSearchStats:  false,
		AiGhostThrottleMs: 50,

		ServerAddr:     ":8080",
		TickIntervalMs: 50,

		LogLevel:  "info",
		LogPretty: true,

		KafkaTopic: "omok-analytics",

		SelfPlayGames:        2,
		SelfPlayOpeningPlies: 2,
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg := c.config
	cfg.KafkaBrokers = append([]string(nil), c.config.KafkaBrokers...)
	return cfg
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

// LoadConfig overlays the JSON file at path on top of DefaultConfig. An
// empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.AiTimeBudgetMs < 0 {
		errs = append(errs, fmt.Errorf("ai_time_budget_ms must not be negative, got %d", c.AiTimeBudgetMs))
	}
	if c.AiMaxDepth < 0 {
		errs = append(errs, fmt.Errorf("ai_max_depth must not be negative, got %d", c.AiMaxDepth))
	}
	if c.TickIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMs))
	}
	if c.SelfPlayGames < 0 {
		errs = append(errs, fmt.Errorf("self_play_games must not be negative, got %d", c.SelfPlayGames))
	}
	if c.SelfPlayOpeningPlies < 0 {
		errs = append(errs, fmt.Errorf("self_play_opening_plies must not be negative, got %d", c.SelfPlayOpeningPlies))
	}
	return errors.Join(errs...)
}

func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.AiTimeBudgetMs) * time.Millisecond
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}
