package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/julianstephens/sleepwatch/internal/constants"
)

// Config is the runtime configuration. Values come from the environment
// (optionally seeded from a .env file) and may be overridden by CLI flags.
type Config struct {
	BaseURL      string        `validate:"required,url"`
	Timeout      time.Duration `validate:"min=1000000000"` // at least 1s
	PollInterval time.Duration `validate:"min=5000000000"` // at least 5s
	Timezone     string        `validate:"required,timezone"`
	StorePath    string        `validate:"required"`
	Debug        bool
	LogLevel     string `validate:"omitempty,oneof=debug info warn error"`

	MQTTBroker string `validate:"omitempty,url"`
	MQTTTopic  string `validate:"required_with=MQTTBroker"`

	OTLPEndpoint string `validate:"omitempty,url"`

	SimAddr string `validate:"omitempty,hostname_port"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		tz := fl.Field().String()
		if tz == constants.DefaultTimezone {
			return true
		}
		_, err := time.LoadLocation(tz)
		return err == nil
	})
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if it exists; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:      getEnv("SLEEPWATCH_BASE_URL", constants.DefaultBaseURL),
		Timeout:      getEnvDuration("SLEEPWATCH_TIMEOUT", constants.DefaultTimeout),
		PollInterval: getEnvDuration("SLEEPWATCH_POLL_INTERVAL", constants.DefaultPollInterval),
		Timezone:     getEnv("SLEEPWATCH_TIMEZONE", constants.DefaultTimezone),
		StorePath:    getEnv("SLEEPWATCH_STORE", constants.DefaultConfigPath),
		Debug:        getEnv("SLEEPWATCH_DEBUG", "false") == "true",
		LogLevel:     getEnv("SLEEPWATCH_LOG_LEVEL", ""),
		MQTTBroker:   getEnv("SLEEPWATCH_MQTT_BROKER", ""),
		MQTTTopic:    getEnv("SLEEPWATCH_MQTT_TOPIC", constants.DefaultMQTTTopic),
		OTLPEndpoint: getEnv("SLEEPWATCH_OTLP_ENDPOINT", ""),
		SimAddr:      getEnv("SLEEPWATCH_SIM_ADDR", constants.DefaultSimAddr),
	}

	for _, key := range []string{"SLEEPWATCH_TIMEOUT", "SLEEPWATCH_POLL_INTERVAL"} {
		if v := os.Getenv(key); v != "" {
			if _, err := parseDuration(v); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	return cfg, nil
}

// Validate checks the configuration and returns a readable error listing every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field(), message(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// ConfigDir returns the directory holding the store and the logs.
// PostgreSQL connection strings fall back to the user config directory.
func (c *Config) ConfigDir() string {
	if IsPostgres(c.StorePath) {
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, constants.AppName)
		}
		return "."
	}
	return filepath.Dir(ExpandHome(c.StorePath))
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// IsPostgres reports whether the store path is a PostgreSQL connection string.
func IsPostgres(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + fe.Param() + " is set"
	case "url":
		return "must be a valid URL"
	case "min":
		return "is too small"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "timezone":
		return "must be a valid IANA timezone"
	case "hostname_port":
		return "must be host:port"
	default:
		return "is invalid"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := parseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseDuration accepts Go durations ("45s") or a bare number of seconds ("45").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
