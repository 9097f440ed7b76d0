// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// Config holds every tunable of the logger. Loaded once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	DataDir string // database and daily CSV files live here
	LogDir  string // slog text log

	LogInterval    time.Duration // persistence tick
	DisplayRefresh time.Duration // monitor poll tick

	CompFactor float64 // compensation divisor, must be > 0
	CompWindow int     // CPU temperature samples smoothed

	HTTPBind    string // API server bind address
	MetricsBind string // Prometheus endpoint for the headless logger, "" disables

	MQTTBroker   string // e.g. tcp://localhost:1883, "" disables the feed
	MQTTTopic    string
	MQTTClientID string

	I2CBus   string // "" picks the first bus periph finds
	Simulate bool   // use simulated probes instead of the HAT

	ProximityWake  float64       // proximity counts that wake/cycle the display
	WakeDebounce   time.Duration // min gap between proximity mode cycles
	DisplayTimeout time.Duration // blank the display after this much inactivity
}

// Load reads the environment (and a .env file when present) and validates
// the result. Validation happens here so a bad compensation factor is
// rejected at startup, never mid-cycle.
func Load() (Config, error) {
	// Missing .env is fine; real deployments use systemd environment files.
	_ = godotenv.Load()

	cfg := Config{
		DataDir:        getEnv("ENVIRO_DATA_DIR", "./data"),
		LogDir:         getEnv("ENVIRO_LOG_DIR", "./logs"),
		LogInterval:    getEnvDuration("ENVIRO_LOG_INTERVAL", 60*time.Second),
		DisplayRefresh: getEnvDuration("ENVIRO_DISPLAY_REFRESH", time.Second),
		CompFactor:     getEnvFloat("ENVIRO_COMP_FACTOR", sensor.DefaultFactor),
		CompWindow:     getEnvInt("ENVIRO_COMP_WINDOW", sensor.DefaultWindow),
		HTTPBind:       getEnv("ENVIRO_HTTP_BIND", ":5000"),
		MetricsBind:    getEnv("ENVIRO_METRICS_BIND", ""),
		MQTTBroker:     getEnv("ENVIRO_MQTT_BROKER", ""),
		MQTTTopic:      getEnv("ENVIRO_MQTT_TOPIC", "enviro/readings"),
		MQTTClientID:   getEnv("ENVIRO_MQTT_CLIENT_ID", "enviroplus-logger"),
		I2CBus:         getEnv("ENVIRO_I2C_BUS", ""),
		Simulate:       getEnvBool("ENVIRO_SIMULATE", false),
		ProximityWake:  getEnvFloat("ENVIRO_PROXIMITY_WAKE", 1500),
		WakeDebounce:   getEnvDuration("ENVIRO_WAKE_DEBOUNCE", 500*time.Millisecond),
		DisplayTimeout: getEnvDuration("ENVIRO_DISPLAY_TIMEOUT", 5*time.Minute),
	}

	if cfg.CompFactor <= 0 {
		return Config{}, fmt.Errorf("ENVIRO_COMP_FACTOR must be > 0, got %g", cfg.CompFactor)
	}
	if cfg.CompWindow < 1 {
		return Config{}, fmt.Errorf("ENVIRO_COMP_WINDOW must be >= 1, got %d", cfg.CompWindow)
	}
	if cfg.LogInterval < time.Second {
		return Config{}, fmt.Errorf("ENVIRO_LOG_INTERVAL must be >= 1s, got %s", cfg.LogInterval)
	}
	if cfg.DisplayRefresh < 100*time.Millisecond {
		return Config{}, fmt.Errorf("ENVIRO_DISPLAY_REFRESH must be >= 100ms, got %s", cfg.DisplayRefresh)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are taken as seconds, matching the original
		// logger's interval setting.
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
