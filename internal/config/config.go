package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	configName = ".rpix"
	envPrefix  = "RPIX"

	DecodeIsolationProcess = "process"
	DecodeIsolationInline  = "inline"
)

type Config struct {
	CacheSize int `mapstructure:"cache_size"`

	OpenWindowBack  int `mapstructure:"open_window_back"`
	OpenWindowAhead int `mapstructure:"open_window_ahead"`
	WindowBack      int `mapstructure:"window_back"`
	WindowAhead     int `mapstructure:"window_ahead"`

	// Zero selects a size from the number of logical cores.
	IOWorkers     int `mapstructure:"io_workers"`
	DecodeWorkers int `mapstructure:"decode_workers"`

	DecodeIsolation string        `mapstructure:"decode_isolation"`
	DecodeTimeout   time.Duration `mapstructure:"decode_timeout"`
	MaxDecodeWidth  int           `mapstructure:"max_decode_width"`
	MaxDecodeHeight int           `mapstructure:"max_decode_height"`
	MaxFileSize     int64         `mapstructure:"max_file_size"`

	ShowHidden bool `mapstructure:"show_hidden"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	LastFolder string `mapstructure:"last_folder"`
}

func DefaultConfig() *Config {
	return &Config{
		CacheSize:       20,
		OpenWindowBack:  0,
		OpenWindowAhead: 5,
		WindowBack:      3,
		WindowAhead:     5,
		DecodeIsolation: DecodeIsolationProcess,
		DecodeTimeout:   10 * time.Second,
		MaxDecodeWidth:  4096,
		MaxDecodeHeight: 4096,
		MaxFileSize:     256 * 1024 * 1024, // 256MB
		LogLevel:        "info",
		LogFile:         "~/.rpix/rpix.log",
	}
}

// SetDefaults registers every key so that environment overrides apply even
// when no config file sets them.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("open_window_back", d.OpenWindowBack)
	v.SetDefault("open_window_ahead", d.OpenWindowAhead)
	v.SetDefault("window_back", d.WindowBack)
	v.SetDefault("window_ahead", d.WindowAhead)
	v.SetDefault("io_workers", d.IOWorkers)
	v.SetDefault("decode_workers", d.DecodeWorkers)
	v.SetDefault("decode_isolation", d.DecodeIsolation)
	v.SetDefault("decode_timeout", d.DecodeTimeout)
	v.SetDefault("max_decode_width", d.MaxDecodeWidth)
	v.SetDefault("max_decode_height", d.MaxDecodeHeight)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("show_hidden", d.ShowHidden)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("last_folder", d.LastFolder)
}

// NewViper prepares a viper instance reading cfgFile, or .rpix.yaml from the
// home directory or the working directory when cfgFile is empty. A missing
// default config file is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is NewViper followed by Load.
func LoadConfig(cfgFile string) (*Config, *viper.Viper, error) {
	v, err := NewViper(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := Load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func ValidateConfig(config *Config) error {
	validLogLevels := []string{"trace", "debug", "info", "warn", "warning", "error"}
	if !slices.Contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validIsolation := []string{DecodeIsolationProcess, DecodeIsolationInline}
	if !slices.Contains(validIsolation, config.DecodeIsolation) {
		return fmt.Errorf("invalid decode isolation: %s", config.DecodeIsolation)
	}

	if config.CacheSize < 1 {
		return fmt.Errorf("cache_size must be at least 1, got %d", config.CacheSize)
	}

	for name, v := range map[string]int{
		"open_window_back":  config.OpenWindowBack,
		"open_window_ahead": config.OpenWindowAhead,
		"window_back":       config.WindowBack,
		"window_ahead":      config.WindowAhead,
		"io_workers":        config.IOWorkers,
		"decode_workers":    config.DecodeWorkers,
		"max_decode_width":  config.MaxDecodeWidth,
		"max_decode_height": config.MaxDecodeHeight,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	if config.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", config.MaxFileSize)
	}
	if config.DecodeTimeout <= 0 {
		return fmt.Errorf("decode_timeout must be positive, got %s", config.DecodeTimeout)
	}
	return nil
}

// LogFilePath expands a leading ~ in the configured log file.
func (c *Config) LogFilePath() (string, error) {
	if c.LogFile == "" {
		return "", nil
	}
	return homedir.Expand(c.LogFile)
}

// DefaultConfigPath is where settings are saved when no config file was read.
func DefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// SaveLastFolder persists folder as last_folder, writing to the config file
// that was read or creating the default one.
func SaveLastFolder(v *viper.Viper, folder string) error {
	v.Set("last_folder", folder)

	path := v.ConfigFileUsed()
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to find home directory: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
