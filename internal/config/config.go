package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the stopping-distance tools.
type Config struct {
	Log     LogConfig
	Tracing TracingConfig
	Metrics MetricsConfig
	Output  OutputConfig
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

// MetricsConfig holds Prometheus textfile configuration. An empty File
// disables the metrics dump.
type MetricsConfig struct {
	File string
}

// OutputConfig holds result rendering defaults.
type OutputConfig struct {
	Format    string
	ProfileDt float64
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Log: LogConfig{
			Level:  getEnv("STOPPING_LOG_LEVEL", "info"),
			Format: getEnv("STOPPING_LOG_FORMAT", "text"),
		},
		Tracing: TracingConfig{
			Enabled:     getBoolEnv("STOPPING_TRACING_ENABLED", false),
			ServiceName: getEnv("STOPPING_SERVICE_NAME", "stopping-engine"),
		},
		Metrics: MetricsConfig{
			File: getEnv("STOPPING_METRICS_FILE", ""),
		},
		Output: OutputConfig{
			Format:    getEnv("STOPPING_OUTPUT_FORMAT", "json"),
			ProfileDt: getFloatEnv("STOPPING_PROFILE_DT", 0.05),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
