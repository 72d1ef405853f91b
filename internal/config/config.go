package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrFileNotExist  = errors.New("config file does not exist")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingToken  = errors.New("telegram token is required")
)

const envPrefix = "HESTIA"

// maxPageSize mirrors the largest page the employee API serves.
const maxPageSize = 100

// Config holds the configuration settings for the application.
// It is built once at startup and handed to the components that need it.
type Config struct {
	Env        string           // Env is the current environment: local, development, production.
	API        APIConfig        // API describes how to reach the employee service.
	Undo       UndoConfig       // Undo holds the timings of deferred deletes.
	PageSize   int              // PageSize is the initial page size of the list.
	Telegram   TelegramConfig   // Telegram holds the bot settings.
	Monitoring MonitoringConfig // Monitoring holds the health and metrics server settings.
}

// APIConfig struct holds the employee API connection settings.
type APIConfig struct {
	BaseURL  string         // BaseURL is the API root, e.g. http://localhost:8000/api.
	Timeout  time.Duration  // Timeout is the per-request timeout.
	Throttle map[string]int // Throttle holds calls per minute per operation, nil when disabled.
}

// UndoConfig struct holds the deferred delete timings.
type UndoConfig struct {
	DeleteDelay            time.Duration
	NoticeDuration         time.Duration
	RestoredNoticeDuration time.Duration
}

// TelegramConfig struct holds the bot settings.
type TelegramConfig struct {
	Token        string        // Token is an unique telegram bot token.
	Timeout      time.Duration // Timeout is the long poller timeout.
	AllowedUsers []int64       // AllowedUsers are the Telegram ids allowed to use the bot, everyone when empty.
}

// MonitoringConfig struct holds the monitoring server settings.
type MonitoringConfig struct {
	Port int
}

// throttleDefaults mirror the rates the server enforces.
var throttleDefaults = map[string]int{
	"list":   20,
	"create": 10,
	"update": 10,
	"delete": 10,
	"import": 3,
	"export": 5,
}

// MustLoad loads the configuration and panics on any error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads an optional .env file, the optional YAML file named by CONFIG_PATH
// and HESTIA_* environment overrides, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	vpr := viper.New()
	setDefaults(vpr)

	vpr.SetEnvPrefix(envPrefix)
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotExist, configPath)
		}

		vpr.SetConfigFile(configPath)
		vpr.SetConfigType("yaml")
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env: vpr.GetString("env"),
		API: APIConfig{
			BaseURL: vpr.GetString("api.base_url"),
			Timeout: vpr.GetDuration("api.timeout"),
		},
		Undo: UndoConfig{
			DeleteDelay:            vpr.GetDuration("undo.delete_delay"),
			NoticeDuration:         vpr.GetDuration("undo.notice_duration"),
			RestoredNoticeDuration: vpr.GetDuration("undo.restored_notice_duration"),
		},
		PageSize: vpr.GetInt("list.page_size"),
		Telegram: TelegramConfig{
			Token:   vpr.GetString("telegram.token"),
			Timeout: vpr.GetDuration("telegram.timeout"),
		},
		Monitoring: MonitoringConfig{
			Port: vpr.GetInt("monitoring.port"),
		},
	}

	if vpr.GetBool("api.throttle.enabled") {
		cfg.API.Throttle = make(map[string]int, len(throttleDefaults))
		for op := range throttleDefaults {
			cfg.API.Throttle[op] = vpr.GetInt("api.throttle." + op)
		}
	}

	// The env variable arrives as one string, "7 8" or "7,8".
	for _, item := range vpr.GetStringSlice("telegram.allowed_users") {
		for _, raw := range strings.FieldsFunc(item, isListSeparator) {
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: telegram.allowed_users: %q is not an id", ErrInvalidConfig, raw)
			}
			cfg.Telegram.AllowedUsers = append(cfg.Telegram.AllowedUsers, userID)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isListSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

func setDefaults(vpr *viper.Viper) {
	defTimeout := 10 * time.Second

	vpr.SetDefault("env", "production")
	vpr.SetDefault("api.base_url", "http://localhost:8000/api")
	vpr.SetDefault("api.timeout", defTimeout)
	vpr.SetDefault("api.throttle.enabled", false)
	for op, perMinute := range throttleDefaults {
		vpr.SetDefault("api.throttle."+op, perMinute)
	}
	vpr.SetDefault("undo.delete_delay", 7*time.Second)
	vpr.SetDefault("undo.notice_duration", 5*time.Second)
	vpr.SetDefault("undo.restored_notice_duration", 3*time.Second)
	vpr.SetDefault("list.page_size", 10)
	vpr.SetDefault("telegram.timeout", defTimeout)
	vpr.SetDefault("monitoring.port", 8080)
}

func (c *Config) validate() error {
	switch {
	case c.API.BaseURL == "":
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	case c.API.Timeout <= 0:
		return fmt.Errorf("%w: api.timeout must be positive", ErrInvalidConfig)
	case c.Undo.DeleteDelay <= 0:
		return fmt.Errorf("%w: undo.delete_delay must be positive", ErrInvalidConfig)
	case c.PageSize < 1 || c.PageSize > maxPageSize:
		return fmt.Errorf("%w: list.page_size must be between 1 and %d", ErrInvalidConfig, maxPageSize)
	case c.Monitoring.Port <= 0:
		return fmt.Errorf("%w: monitoring.port must be positive", ErrInvalidConfig)
	}

	for op, perMinute := range c.API.Throttle {
		if perMinute <= 0 {
			return fmt.Errorf("%w: api.throttle.%s must be positive", ErrInvalidConfig, op)
		}
	}

	return nil
}

// ValidateBot checks the settings only the Telegram front-end needs.
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Telegram.Timeout <= 0 {
		return fmt.Errorf("%w: telegram.timeout must be positive", ErrInvalidConfig)
	}

	return nil
}
