// Package config loads the queue-demo configuration via Viper, with
// hot-reload wired through fsnotify: a global cfg guarded by a
// sync.RWMutex, refreshed in a WatchConfig/OnConfigChange callback.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/arcentrix/concurrentqueue/pkg/blockingqueue"
	"github.com/arcentrix/concurrentqueue/pkg/qlog"
)

// QueueConfig configures the blocking queue the demo command drives.
type QueueConfig struct {
	Capacity          uint   `mapstructure:"capacity"`
	Algorithm         string `mapstructure:"algorithm"` // "disruptor" or "vyukov"
	UseWaitingLocking bool   `mapstructure:"useWaitingLocking"`
	Producers         int    `mapstructure:"producers"`
	Consumers         int    `mapstructure:"consumers"`
}

// ToAlgorithm maps the configured string to a blockingqueue.Algorithm,
// defaulting to AlgorithmDisruptor for an unrecognized or empty value.
func (q QueueConfig) ToAlgorithm() blockingqueue.Algorithm {
	if strings.EqualFold(q.Algorithm, "vyukov") {
		return blockingqueue.AlgorithmVyukov
	}
	return blockingqueue.AlgorithmDisruptor
}

// AppConfig is the demo command's full configuration surface.
type AppConfig struct {
	Queue QueueConfig `mapstructure:"queue"`
	Log   qlog.Conf   `mapstructure:"log"`
}

// SetDefaults fills unset fields with their zero-value-safe defaults.
func (c *AppConfig) SetDefaults() {
	if c.Queue.Capacity == 0 {
		c.Queue.Capacity = 1024
	}
	if c.Queue.Algorithm == "" {
		c.Queue.Algorithm = "disruptor"
	}
	if c.Queue.Producers == 0 {
		c.Queue.Producers = 2
	}
	if c.Queue.Consumers == 0 {
		c.Queue.Consumers = 2
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

// NewConf loads confPath exactly once for the process lifetime and
// returns the resulting config.
func NewConf(confPath string) *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confPath)
		if err != nil {
			panic(fmt.Sprintf("concurrentqueue: load config file: %s", err))
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	out := cfg
	return &out
}

// GetConfig returns a snapshot of the current config, safe to call while
// a hot-reload may be in flight.
func GetConfig() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile reads confPath via Viper and wires a hot-reload callback
// through fsnotify so the global config reflects on-disk edits.
func LoadConfigFile(confPath string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(confPath)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("concurrentqueue: read config file: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("configuration changed, reloading", "file", e.Name)
		if err := v.ReadInConfig(); err != nil {
			slog.Error("failed to re-read configuration file", "error", err, "file", e.Name)
			return
		}
		mu.Lock()
		if err := v.Unmarshal(&cfg); err != nil {
			mu.Unlock()
			slog.Error("failed to unmarshal configuration file", "error", err, "file", e.Name)
			return
		}
		cfg.SetDefaults()
		mu.Unlock()
		slog.Info("configuration reloaded successfully", "file", e.Name)
	})

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("concurrentqueue: unmarshal config file: %w", err)
	}
	cfg.SetDefaults()
	return cfg, nil
}
