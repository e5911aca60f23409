package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/hdiview/internal/utils"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Global configuration structure.
type Global struct {
	DataDir     string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	Store       string `mapstructure:"store" yaml:"store" validate:"oneof=memory sqlite"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path" validate:"required_if=Store sqlite"`
	SessionFile string `mapstructure:"session_file" yaml:"session_file" validate:"required"`

	// Chart panel size in pixels
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width" validate:"gte=200,lte=4000"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height" validate:"gte=150,lte=4000"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// HTTP host and dataset fetch
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required"`
	FetchTimeoutSec int    `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec" validate:"gte=1,lte=600"`
}

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func configPath(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := utils.AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.hdiview/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := configPath(cfgFile)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HDIVIEW")
	v.AutomaticEnv()

	appDir, err := utils.AppDir()
	if err != nil {
		return nil, err
	}

	// Defaults
	v.SetDefault("data_dir", filepath.Join(appDir, "data"))
	v.SetDefault("store", "memory")
	v.SetDefault("sqlite_path", filepath.Join(appDir, "hdiview.db"))
	v.SetDefault("session_file", filepath.Join(appDir, "session.yaml"))
	v.SetDefault("chart_width", 640)
	v.SetDefault("chart_height", 420)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("fetch_timeout_sec", 60)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(appDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a present but malformed file is an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DataDir = utils.ExpandHome(c.DataDir)
	c.SQLitePath = utils.ExpandHome(c.SQLitePath)
	c.SessionFile = utils.ExpandHome(c.SessionFile)
	return &c, nil
}
