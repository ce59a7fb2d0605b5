// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-experience-repository/localstore"
	"github.com/goliatone/go-experience-repository/logging"
	"github.com/goliatone/go-experience-repository/remote"
	"github.com/goliatone/go-experience-repository/usecase"
)

type APIConfig struct {
	BaseURL          string
	RequestTimeout   time.Duration
	ResourceTimeout  time.Duration
	MaxRetryAttempts int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	Headers          map[string]string
}

type StoreConfig struct {
	DSN string
}

// MemoConfig controls the in-process memo in front of the local store.
type MemoConfig struct {
	Enabled  bool
	TTL      time.Duration
	Capacity int
}

type SearchConfig struct {
	MinQueryLength int
}

type LogConfig struct {
	Level  string
	Format logging.Format
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Tag     string
}

// Config is the full application configuration.
type Config struct {
	API       APIConfig
	Store     StoreConfig
	Memo      MemoConfig
	Search    SearchConfig
	Log       LogConfig
	FluentBit FluentBitConfig
}

// Load reads envPath (or ./.env when omitted) and then the process
// environment. A missing default .env file is not an error; an explicit
// path that cannot be read is.
func Load(envPath ...string) (Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envPath[0], err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := Config{
		API: APIConfig{
			BaseURL:          getEnvAsString("EXPERIENCE_API_BASE_URL", ""),
			RequestTimeout:   getEnvAsDuration("EXPERIENCE_API_REQUEST_TIMEOUT", remote.DefaultRequestTimeout, &errs),
			ResourceTimeout:  getEnvAsDuration("EXPERIENCE_API_RESOURCE_TIMEOUT", remote.DefaultResourceTimeout, &errs),
			MaxRetryAttempts: getEnvAsInt("EXPERIENCE_API_MAX_RETRY_ATTEMPTS", remote.DefaultMaxRetryAttempts, &errs),
			RetryWaitMin:     getEnvAsDuration("EXPERIENCE_API_RETRY_WAIT_MIN", remote.DefaultRetryWaitMin, &errs),
			RetryWaitMax:     getEnvAsDuration("EXPERIENCE_API_RETRY_WAIT_MAX", remote.DefaultRetryWaitMax, &errs),
			Headers:          parseHeaders(getEnvAsString("EXPERIENCE_API_HEADERS", "")),
		},
		Store: StoreConfig{
			DSN: getEnvAsString("EXPERIENCE_CACHE_DSN", localstore.DefaultDSN),
		},
		Memo: MemoConfig{
			Enabled:  getEnvAsBool("EXPERIENCE_MEMO_ENABLED", true, &errs),
			TTL:      getEnvAsDuration("EXPERIENCE_MEMO_TTL", 5*time.Minute, &errs),
			Capacity: getEnvAsInt("EXPERIENCE_MEMO_CAPACITY", 1000, &errs),
		},
		Search: SearchConfig{
			MinQueryLength: getEnvAsInt("EXPERIENCE_SEARCH_MIN_LENGTH", usecase.DefaultMinQueryLength, &errs),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvAsString("LOG_LEVEL", "info")),
			Format: logging.Format(strings.ToLower(getEnvAsString("LOG_FORMAT", string(logging.FormatText)))),
		},
		FluentBit: FluentBitConfig{
			Enabled: getEnvAsBool("FLUENTBIT_ENABLED", false, &errs),
			Host:    getEnvAsString("FLUENTBIT_HOST", ""),
			Port:    getEnvAsInt("FLUENTBIT_PORT", 24224, &errs),
			Tag:     getEnvAsString("FLUENTBIT_TAG", "experience"),
		},
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	return validation.Errors{
		"api":        c.API.Validate(),
		"memo":       c.Memo.Validate(),
		"log":        c.Log.Validate(),
		"fluent_bit": c.FluentBit.Validate(),
	}.Filter()
}

func (c APIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ResourceTimeout, validation.Required, validation.Min(c.RequestTimeout)),
		validation.Field(&c.MaxRetryAttempts, validation.Min(0)),
		validation.Field(&c.RetryWaitMax, validation.Min(c.RetryWaitMin)),
	)
}

func (c MemoConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Format, validation.In(logging.FormatText, logging.FormatJSON, logging.FormatColor)),
	)
}

func (c FluentBitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Tag, validation.Required),
	)
}

// RemoteConfig converts the API section for remote.NewClient.
func (c Config) RemoteConfig() remote.Config {
	return remote.Config{
		BaseURL:          c.API.BaseURL,
		RequestTimeout:   c.API.RequestTimeout,
		ResourceTimeout:  c.API.ResourceTimeout,
		MaxRetryAttempts: c.API.MaxRetryAttempts,
		RetryWaitMin:     c.API.RetryWaitMin,
		RetryWaitMax:     c.API.RetryWaitMax,
		Headers:          c.API.Headers,
	}
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// parseHeaders reads "k=v,k2=v2". Malformed pairs are skipped.
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

func getEnvAsString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool, errs *[]error) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a duration", key, raw))
		return defaultValue
	}
	return value
}
