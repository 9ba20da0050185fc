package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultAppName        = "SproutOnboarding"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultGatewayTimeout = 15 * time.Second
	defaultResendWindow   = 60 * time.Second
	defaultPrefsPath      = "sprout_prefs.json"
	gatewayTimeoutEnvVar  = "GATEWAY_TIMEOUT"
	shutdownEnvVar        = "SHUTDOWN_TIMEOUT"
	resendWindowEnvVar    = "OTP_RESEND_WINDOW"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	RedisURL       string
	PrefsPath      string
	GatewayURL     string
	GatewayAnonKey string
	GatewayTimeout time.Duration
	DeviceLocale   string
	ResendWindow   time.Duration
	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		RedisURL:       os.Getenv("REDIS_URL"),
		PrefsPath:      getEnv("PREFS_PATH", defaultPrefsPath),
		GatewayURL:     os.Getenv("GATEWAY_URL"),
		GatewayAnonKey: os.Getenv("GATEWAY_ANON_KEY"),
		GatewayTimeout: defaultGatewayTimeout,
		DeviceLocale:   os.Getenv("DEVICE_LOCALE"),
		ResendWindow:   defaultResendWindow,
		ShutdownPeriod: defaultShutdownDelay,
	}

	durations := []struct {
		envVar string
		dst    *time.Duration
	}{
		{gatewayTimeoutEnvVar, &cfg.GatewayTimeout},
		{shutdownEnvVar, &cfg.ShutdownPeriod},
		{resendWindowEnvVar, &cfg.ResendWindow},
	}
	for _, item := range durations {
		if v := os.Getenv(item.envVar); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", item.envVar, err)
			}
			*item.dst = d
		}
	}

	if cfg.GatewayURL == "" {
		return Config{}, fmt.Errorf("GATEWAY_URL must be set")
	}

	if cfg.GatewayAnonKey == "" && !IsDev(cfg.AppEnv) {
		return Config{}, fmt.Errorf("GATEWAY_ANON_KEY must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the environment name denotes a local deployment where
// external backends may be absent.
func IsDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
