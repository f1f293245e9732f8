package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct using `env` / `envDefault` tags:
//
//	type Config struct {
//	    HTTPPort       int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8020"`
//	    ReviewsAPIURL  string `env:"REVIEWS_API_URL" envDefault:"http://localhost:8010/reviews"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ValidatePort reports an error when port is outside 1..65535.
func ValidatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s: %d", name, port)
	}
	return nil
}
