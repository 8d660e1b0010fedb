package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Default configuration values, used when no config file or flag overrides
// them.
const (
	DefaultWidth       = 128
	DefaultThreshold   = 0.5
	DefaultShingleSpan = 3
	DefaultHashSeed    = 0
	DefaultHashFamily  = "fnv-splitmix"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultMetricsAddr = ":9090"
)

// configName is the config file name without extension.
const configName = ".dupcluster"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for dupcluster settings.
const envPrefix = "DUPCLUSTER"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Load loads configuration from file, env vars, and defaults. If
// configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME. A missing
// config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("clustering.width", DefaultWidth)
	viperCfg.SetDefault("clustering.threshold", DefaultThreshold)
	viperCfg.SetDefault("clustering.shingle_span", DefaultShingleSpan)
	viperCfg.SetDefault("clustering.hash_seed", DefaultHashSeed)
	viperCfg.SetDefault("clustering.hash_family", DefaultHashFamily)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("metrics.enabled", false)
	viperCfg.SetDefault("metrics.addr", DefaultMetricsAddr)
}
