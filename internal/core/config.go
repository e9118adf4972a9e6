package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the pinboard
// server components.
type Config struct {
	// Hostname or IP address on which the server will listen for connections.
	Hostname string `mapstructure:"hostname"`
	// Port on which the board accepts client connections.
	Port int `mapstructure:"port"`
	// Full path to file to which logs will be written. Blank will write to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	Debugging struct {
		// Enable extra info-providing mechanisms for the server.
		Enabled bool `mapstructure:"enabled"`
		// Port on which a pprof server will be started if debug mode is enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Log every parsed command.
		CommandLoggingEnabled bool `mapstructure:"command_logging_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "PINBOARD"

var defaults = map[string]interface{}{
	"hostname":                          "0.0.0.0",
	"port":                              4554,
	"log_file_path":                     "",
	"log_level":                         "info",
	"debugging.enabled":                 false,
	"debugging.pprof_port":              4040,
	"debugging.command_logging_enabled": false,
}

// LoadConfig reads config.yaml from configPath if one exists, layering it and
// any PINBOARD_* environment variables over the defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, debugging.enabled can be set using: <envVarPrefix>_DEBUGGING_ENABLED
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config object: %w", err)
	}
	return config, nil
}

// ListenAddress returns the host:port pair the board listens on.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// PprofAddress returns the local address of the pprof server.
func (c *Config) PprofAddress() string {
	return fmt.Sprintf("localhost:%d", c.Debugging.PprofPort)
}
