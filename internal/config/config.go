package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Alerts    AlertServiceConfig
	Incidents IncidentServiceConfig
	Worker    WorkerConfig
	Logging   LoggingConfig
}

type AlertServiceConfig struct {
	Host         string
	Port         int
	DocumentPath string
	RateLimitRPS int
}

type IncidentServiceConfig struct {
	Host         string
	Port         int
	DBPath       string
	RateLimitRPS int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Alerts: AlertServiceConfig{
			Host:         getEnv("ALERT_HOST", "localhost"),
			Port:         getEnvInt("ALERT_PORT", 8080),
			DocumentPath: getEnv("ALERT_DOCUMENT_PATH", "./data/alerts.xml"),
			RateLimitRPS: getEnvInt("ALERT_RATE_LIMIT_RPS", 5),
		},
		Incidents: IncidentServiceConfig{
			Host:         getEnv("INCIDENT_HOST", "localhost"),
			Port:         getEnvInt("INCIDENT_PORT", 8081),
			DBPath:       getEnv("INCIDENT_DB_PATH", "./data/incidents.db"),
			RateLimitRPS: getEnvInt("INCIDENT_RATE_LIMIT_RPS", 5),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Alerts.Port < 1 || c.Alerts.Port > 65535 {
		return fmt.Errorf("invalid alert service port: %d", c.Alerts.Port)
	}
	if c.Incidents.Port < 1 || c.Incidents.Port > 65535 {
		return fmt.Errorf("invalid incident service port: %d", c.Incidents.Port)
	}
	if c.Alerts.DocumentPath == "" {
		return fmt.Errorf("alert document path must not be empty")
	}
	if c.Alerts.RateLimitRPS < 1 || c.Incidents.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
