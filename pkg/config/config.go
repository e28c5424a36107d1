package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	CartModeBag   = "bag"
	CartModeLocal = "local"

	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"

	OrderLogStore = "store"
	OrderLogMongo = "mongo"
)

type Config struct {
	Port           string `envconfig:"PORT" default:"8000"`
	Env            string `envconfig:"ENV" default:"development"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"https://a2b.runasp.net"`
	APITimeout      time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	DefaultLanguage string        `envconfig:"DEFAULT_LANGUAGE" default:"en"`

	CartMode         string        `envconfig:"CART_MODE" default:"bag"`
	BagDebounce      time.Duration `envconfig:"BAG_DEBOUNCE" default:"1s"`
	BagDeliveryFee   float64       `envconfig:"BAG_DELIVERY_FEE" default:"50"`
	LocalDeliveryFee float64       `envconfig:"LOCAL_DELIVERY_FEE" default:"5"`
	DemoOTP          string        `envconfig:"DEMO_OTP" default:"1234"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"memory"`
	StorePrefix   string `envconfig:"STORE_PREFIX" default:"storefront"`
	RedisAddress  string `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	OrderLog      string `envconfig:"ORDER_LOG" default:"store"`
	MongoURI      string `envconfig:"MONGODB_URI" default:""`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"storefront"`

	GoogleMapsAPIKey string `envconfig:"GOOGLE_MAPS_API_KEY" default:""`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.CartMode {
	case CartModeBag, CartModeLocal:
	default:
		return fmt.Errorf("invalid CART_MODE %q: want %q or %q", c.CartMode, CartModeBag, CartModeLocal)
	}

	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverRedis:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.OrderLog {
	case OrderLogStore:
	case OrderLogMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when ORDER_LOG=mongo")
		}
	default:
		return fmt.Errorf("invalid ORDER_LOG %q", c.OrderLog)
	}

	if c.BagDebounce <= 0 {
		return errors.New("BAG_DEBOUNCE must be positive")
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.BagDeliveryFee < 0 || c.LocalDeliveryFee < 0 {
		return errors.New("delivery fees cannot be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DeliveryFee returns the fixed fee of the active cart mode.
func (c *Config) DeliveryFee() float64 {
	if c.CartMode == CartModeLocal {
		return c.LocalDeliveryFee
	}
	return c.BagDeliveryFee
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
