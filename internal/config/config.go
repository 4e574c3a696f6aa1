package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"orders/internal/domain/bookings"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":5001"`

	MenuServiceURL    string        `envconfig:"MENU_SERVICE_URL" default:"http://canteen-menu-service:5002"`
	MenuLookupTimeout time.Duration `envconfig:"MENU_LOOKUP_TIMEOUT" default:"3s"`
	MenuLookupMode    string        `envconfig:"MENU_LOOKUP_MODE" default:"strict"`
	MenuCacheTTL      time.Duration `envconfig:"MENU_CACHE_TTL" default:"30s"`
	EnrichConcurrency int           `envconfig:"ENRICH_CONCURRENCY" default:"8"`

	ReferenceTimezone string `envconfig:"REFERENCE_TIMEZONE" default:"UTC"`
	PolicyProfile     string `envconfig:"POLICY_PROFILE"`

	JaegerEndpoint string `envconfig:"JAEGER_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	if _, err := bookings.ParseLookupMode(c.MenuLookupMode); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.ReferenceTimezone); err != nil {
		return fmt.Errorf("invalid REFERENCE_TIMEZONE %q: %w", c.ReferenceTimezone, err)
	}
	if c.MenuLookupTimeout <= 0 {
		return fmt.Errorf("MENU_LOOKUP_TIMEOUT must be positive")
	}
	if c.EnrichConcurrency <= 0 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be positive")
	}
	return nil
}

// Policy builds the booking policy from the profile file, or the default
// profile when none is configured.
func (c Config) Policy() (bookings.Policy, error) {
	profile := DefaultProfile()
	if c.PolicyProfile != "" {
		var err error
		profile, err = LoadProfile(c.PolicyProfile)
		if err != nil {
			return bookings.Policy{}, err
		}
	}

	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return bookings.Policy{}, fmt.Errorf("invalid REFERENCE_TIMEZONE %q: %w", c.ReferenceTimezone, err)
	}

	mode, err := bookings.ParseLookupMode(c.MenuLookupMode)
	if err != nil {
		return bookings.Policy{}, err
	}

	return profile.Policy(loc, mode)
}
