package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultGatewayURL  = "http://localhost:8000"
	DefaultListenAddr  = ":8080"
	DefaultLogLevel    = "info"
	DefaultServiceName = "loginform"
)

// Config holds everything the login form reads from the environment.
type Config struct {
	GatewayURL  string
	ListenAddr  string
	LogLevel    string
	OTelEnabled bool
	ServiceName string
}

// LoadDotEnv loads environment variables from path when present.
// Existing process environment variables are not overridden.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	otelEnabled, err := getEnvBool("OTEL_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		GatewayURL:  getEnv("GATEWAY_URL", DefaultGatewayURL),
		ListenAddr:  getEnv("LISTEN_ADDR", DefaultListenAddr),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		OTelEnabled: otelEnabled,
		ServiceName: getEnv("OTEL_SERVICE_NAME", DefaultServiceName),
	}

	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return Config{}, errors.New("GATEWAY_URL must not be empty")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
