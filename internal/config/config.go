// Package config loads client settings from an optional .env file and the
// environment, and validates them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"distress/internal/api"
	"distress/internal/geo"
	"distress/internal/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvServerURL     = "DISTRESS_SERVER_URL"
	EnvLatitude      = "DISTRESS_LATITUDE"
	EnvLongitude     = "DISTRESS_LONGITUDE"
	EnvRecipient     = "DISTRESS_RECIPIENT"
	EnvHelperLookup  = "DISTRESS_HELPER_LOOKUP"
	EnvHelperRadius  = "DISTRESS_HELPER_RADIUS_KM"
	EnvLogFormat     = "LOG_FORMAT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFile       = "DISTRESS_LOG_FILE"
	EnvOTLPEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTELService   = "OTEL_SERVICE_NAME"
	EnvListenAddr    = "DISTRESS_LISTEN_ADDR"
	EnvSessionSecret = "DISTRESS_SESSION_SECRET"
	DefaultListen    = ":5000"
	DefaultLogFile   = "distress.log"
	DefaultService   = "distress"
	DefaultLogFormat = "text"
	DefaultLogLevel  = "info"
)

// Config holds all client settings.
type Config struct {
	ServerURL string `validate:"required,url"`

	// Static position. HasLocation is false when no fix is configured.
	HasLocation bool
	Latitude    float64 `validate:"min=-90,max=90"`
	Longitude   float64 `validate:"min=-180,max=180"`

	Recipient      string  `validate:"required,email"`
	HelperLookup   bool
	HelperRadiusKM float64 `validate:"gt=0"`

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFile   string

	OTLPEndpoint string
	ServiceName  string `validate:"required"`

	// Dev server (distress serve). An empty secret means a random one per run.
	ListenAddr    string `validate:"required"`
	SessionSecret string `validate:"omitempty,min=32"`
}

// Load reads the given .env files (default ".env"; a missing file is not an
// error) and then builds the Config from the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("no env file, relying on environment variables", "file", f)
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	if v := getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := getenv(EnvRecipient); v != "" {
		cfg.Recipient = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := getenv(EnvOTELService); v != "" {
		cfg.ServiceName = v
	}
	cfg.OTLPEndpoint = getenv(EnvOTLPEndpoint)
	if v := getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	cfg.SessionSecret = getenv(EnvSessionSecret)

	lat, lng := getenv(EnvLatitude), getenv(EnvLongitude)
	if (lat == "") != (lng == "") {
		return nil, fmt.Errorf("%s and %s must be set together", EnvLatitude, EnvLongitude)
	}
	if lat != "" {
		if err := cfg.SetLocation(lat, lng); err != nil {
			return nil, err
		}
	}
	if v := getenv(EnvHelperLookup); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvHelperLookup, err)
		}
		cfg.HelperLookup = b
	}
	if v := getenv(EnvHelperRadius); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvHelperRadius, err)
		}
		cfg.HelperRadiusKM = r
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ServerURL:      api.DefaultBaseURL,
		Recipient:      helpers.PlaceholderRecipient,
		HelperRadiusKM: helpers.DefaultRadiusKM,
		LogFormat:      DefaultLogFormat,
		LogLevel:       DefaultLogLevel,
		LogFile:        DefaultLogFile,
		ServiceName:    DefaultService,
		ListenAddr:     DefaultListen,
	}
}

// SetLocation parses and sets the static position.
func (c *Config) SetLocation(lat, lng string) error {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return fmt.Errorf("latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return fmt.Errorf("longitude %q: %w", lng, err)
	}
	c.HasLocation = true
	c.Latitude = la
	c.Longitude = lo
	return nil
}

// Locator returns the configured position provider.
func (c *Config) Locator() geo.Locator {
	if !c.HasLocation {
		return &geo.StaticLocator{}
	}
	return geo.Fixed(geo.Location{Latitude: c.Latitude, Longitude: c.Longitude})
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
