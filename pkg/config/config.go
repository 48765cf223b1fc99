package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	FCorr  FCorrConfig  `mapstructure:"fcorr" yaml:"fcorr"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// FCorrConfig controls functional-correctness evaluation
type FCorrConfig struct {
	AutoInstall    bool          `mapstructure:"auto_install" yaml:"auto_install"`
	Strict         bool          `mapstructure:"strict" yaml:"strict"`
	TestTimeout    time.Duration `mapstructure:"test_timeout" yaml:"test_timeout"`
	InstallTimeout time.Duration `mapstructure:"install_timeout" yaml:"install_timeout"`
	MaxOutputBytes int           `mapstructure:"max_output_bytes" yaml:"max_output_bytes"`
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
	SamplesDir     string        `mapstructure:"samples_dir" yaml:"samples_dir"`
	SolutionDir    string        `mapstructure:"solution_dir" yaml:"solution_dir"`
}

// SetDefaults registers every default with v
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "sdkbench")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- FCorr --
	v.SetDefault("fcorr.auto_install", true)
	v.SetDefault("fcorr.strict", true)
	v.SetDefault("fcorr.test_timeout", DefaultTestTimeout)
	v.SetDefault("fcorr.install_timeout", DefaultInstallTimeout)
	v.SetDefault("fcorr.max_output_bytes", DefaultMaxOutputBytes)
	v.SetDefault("fcorr.concurrency", DefaultConcurrency)
	v.SetDefault("fcorr.samples_dir", DefaultSamplesDir)
	v.SetDefault("fcorr.solution_dir", DefaultSolutionDir)
}

// NewViper returns a viper instance with defaults, config file discovery
// and SDKBENCH_ environment overrides. An explicit configFile must exist;
// the discovered sdkbench.yaml is optional.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns the configuration with only defaults applied
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.FCorr.TestTimeout <= 0 {
		return fmt.Errorf("fcorr.test_timeout must be positive")
	}
	if c.FCorr.InstallTimeout <= 0 {
		return fmt.Errorf("fcorr.install_timeout must be positive")
	}
	if c.FCorr.Concurrency <= 0 {
		return fmt.Errorf("fcorr.concurrency must be a positive integer")
	}
	if c.FCorr.MaxOutputBytes <= 0 {
		return fmt.Errorf("fcorr.max_output_bytes must be a positive integer")
	}
	if c.FCorr.SolutionDir == "" {
		return fmt.Errorf("fcorr.solution_dir is required")
	}
	switch strings.ToLower(c.Logger.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}
