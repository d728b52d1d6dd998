// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Shivanand-hulikatti/styledecor/internal/database"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Database database.Config `envPrefix:"DB_"`

	// Checkout gateway.
	StripeSecretKey  string `env:"STRIPE_SECRET_KEY,required,notEmpty"`
	CheckoutCurrency string `env:"CHECKOUT_CURRENCY" envDefault:"usd"`
	SiteDomain       string `env:"SITE_DOMAIN" envDefault:"http://localhost:5173"`

	// Identity gate.
	JWTSecret string `env:"IDENTITY_JWT_SECRET,required,notEmpty"`
	JWTIssuer string `env:"IDENTITY_JWT_ISSUER"`

	// Domain events. Publishing is disabled when RabbitURL is empty.
	RabbitURL      string `env:"RABBIT_URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" envDefault:"styledecor.events"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`

	// Tracing is disabled when OTELEndpoint is empty.
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SuccessURL is where the checkout gateway sends the customer after paying.
// The gateway substitutes the session id placeholder.
func (c Config) SuccessURL() string {
	return c.SiteDomain + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where the checkout gateway sends the customer on abort.
func (c Config) CancelURL() string {
	return c.SiteDomain + "/dashboard/payment-cancelled"
}
