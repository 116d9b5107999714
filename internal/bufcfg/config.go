// Package bufcfg loads buffer-pool configuration from a YAML file,
// mirroring the teacher repo's viper-based config loader.
package bufcfg

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tuannm99/bufcache/internal/bufferpool"
)

// Config is the on-disk shape of a pool's configuration.
type Config struct {
	Pool struct {
		Capacity int    `mapstructure:"capacity"`
		Policy   string `mapstructure:"policy"`
	} `mapstructure:"pool"`
	Storage struct {
		File string `mapstructure:"file"`
	} `mapstructure:"storage"`
}

// Load reads and unmarshals a YAML config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Pool.Capacity <= 0 {
		cfg.Pool.Capacity = 128
	}
	if cfg.Pool.Policy == "" {
		cfg.Pool.Policy = string(bufferpool.Clock)
	}
	return &cfg, nil
}

// Policy converts the config's string policy tag to a bufferpool.Policy,
// validating it against the closed set the pool accepts.
func (c *Config) Policy() (bufferpool.Policy, error) {
	switch p := bufferpool.Policy(c.Pool.Policy); p {
	case bufferpool.FIFO, bufferpool.LRU, bufferpool.Clock:
		return p, nil
	default:
		return "", fmt.Errorf("bufcfg: unknown pool.policy %q (want fifo, lru, or clock)", c.Pool.Policy)
	}
}
