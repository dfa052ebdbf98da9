// Package config provides configuration management for the gpuwatch server.
// It handles loading, saving, and validating configuration from YAML files.
package config

import (
	"fmt"
	"path/filepath"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = "config"
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "gpuwatch.config.yaml"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	GPU       GPUConfig       `yaml:"gpu" json:"gpu"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Log       LogConfig       `yaml:"log" json:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"readTimeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"writeTimeout"` // seconds
}

// GPUConfig contains settings for the device provider layer
type GPUConfig struct {
	// MockDevices is the number of simulated devices when running on
	// the mock backend.
	MockDevices int `yaml:"mock_devices" json:"mockDevices"`
	// MockSeed seeds the simulated device generator so the same config
	// always produces the same static device identities.
	MockSeed int64 `yaml:"mock_seed" json:"mockSeed"`
}

// TelemetryConfig contains settings for the live telemetry stream
type TelemetryConfig struct {
	// IntervalSeconds is the broadcast period for WebSocket telemetry frames
	IntervalSeconds int `yaml:"interval_seconds" json:"intervalSeconds"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level     string `yaml:"level" json:"level"`         // debug, info, warn, error
	Format    string `yaml:"format" json:"format"`       // text, json
	Output    string `yaml:"output" json:"output"`       // stdout, file, both
	Directory string `yaml:"directory" json:"directory"` // log file directory
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         9833,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		GPU: GPUConfig{
			MockDevices: 1,
			MockSeed:    42,
		},
		Telemetry: TelemetryConfig{
			IntervalSeconds: 5,
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			Output:    "stdout",
			Directory: "logs",
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read_timeout must be positive, got %d", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write_timeout must be positive, got %d", c.Server.WriteTimeout)
	}
	if c.GPU.MockDevices < 1 {
		return fmt.Errorf("gpu mock_devices must be at least 1, got %d", c.GPU.MockDevices)
	}
	if c.Telemetry.IntervalSeconds <= 0 {
		return fmt.Errorf("telemetry interval_seconds must be positive, got %d", c.Telemetry.IntervalSeconds)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	return nil
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	return DefaultConfigDir
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}
