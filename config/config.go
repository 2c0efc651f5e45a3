// Package config loads cardbin settings from an optional YAML file and CARDBIN_*
// environment variables over built-in defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"git.thinkinpower.net/cardbin/bdata"
	"git.thinkinpower.net/cardbin/data"
	"git.thinkinpower.net/cardbin/debounce"
	"git.thinkinpower.net/cardbin/merge"
	"git.thinkinpower.net/cardbin/mod"
	"git.thinkinpower.net/cardbin/validation"
)

const EnvPrefix = "CARDBIN"

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port" yaml:"port"`
	Mode      string `mapstructure:"mode" yaml:"mode"` // dev, test or release
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	Watch     bool   `mapstructure:"watch" yaml:"watch"`
	Database  string `mapstructure:"database" yaml:"database"` // memory or redis
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
}

type ValidationConfig struct {
	AllowedNetworks  []string      `mapstructure:"allowed_networks" yaml:"allowed_networks"`
	PriorityNetworks []string      `mapstructure:"priority_networks" yaml:"priority_networks"`
	MinBinLength     int           `mapstructure:"min_bin_length" yaml:"min_bin_length"`
	MaxBinLength     int           `mapstructure:"max_bin_length" yaml:"max_bin_length"`
	Debounce         time.Duration `mapstructure:"debounce" yaml:"debounce"`
	LookupTimeout    time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`
	ResolverURL      string        `mapstructure:"resolver_url" yaml:"resolver_url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", data.DefaultPort)
	v.SetDefault("server.mode", data.RunModeDev)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.data_dir", data.DefaultDataDir)
	v.SetDefault("server.watch", true)
	v.SetDefault("server.database", bdata.BinDatabaseModeMemory)
	v.SetDefault("server.redis_addr", data.DefaultRedisAddr)

	v.SetDefault("validation.allowed_networks", mod.AllCardNetworks.Strings())
	v.SetDefault("validation.priority_networks", mod.AllowedNetworks(mod.PriorityNetworks()).Strings())
	v.SetDefault("validation.min_bin_length", validation.DefaultMinBinLength)
	v.SetDefault("validation.max_bin_length", validation.DefaultMaxBinLength)
	v.SetDefault("validation.debounce", debounce.DefaultWindow)
	v.SetDefault("validation.lookup_timeout", validation.DefaultLookupTimeout)
	v.SetDefault("validation.resolver_url", "http://localhost:8080")
}

// Load reads path when it is not empty, then applies CARDBIN_* variables, for
// example CARDBIN_SERVER_PORT or CARDBIN_VALIDATION_ALLOWED_NETWORKS=VISA,MASTERCARD.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// ToValidation builds the controller configuration. Unknown network names are
// dropped; an empty allowed list falls back to every network.
func (c *Config) ToValidation() validation.Config {
	cfg := validation.DefaultConfig()
	if allowed := mod.ParseAllowedNetworks(c.Validation.AllowedNetworks); len(allowed) > 0 {
		cfg.Allowed = allowed
	}
	priority := mod.ParseAllowedNetworks(c.Validation.PriorityNetworks)
	cfg.Rules = merge.PriorityDebitRules(priority...)
	cfg.MinBinLength = c.Validation.MinBinLength
	cfg.MaxBinLength = c.Validation.MaxBinLength
	cfg.Debounce = c.Validation.Debounce
	cfg.LookupTimeout = c.Validation.LookupTimeout
	return cfg
}

func (c *Config) ToBinData() bdata.BinDataConfig {
	return bdata.BinDataConfig{
		DataDir:      c.Server.DataDir,
		Watch:        c.Server.Watch,
		MaxBinLength: c.Validation.MaxBinLength,
		RedisAddr:    c.Server.RedisAddr,
	}
}
