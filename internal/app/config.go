package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pragerfoto/mentor-order-api/internal/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (PRAGER_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Mail      MailConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// MailConfig selects and configures the order delivery transport.
type MailConfig struct {
	Transport string `default:"resend" usage:"Order delivery transport: resend or smtp"`
	From      string `default:"Pragerfoto Rendelés <info@pragerfoto.hu>" usage:"Sender (the domain must be verified in the Resend account)"`
	To        string `default:"info@pragerfoto.hu" usage:"Order notification recipient"`

	ResendAPIKey string `usage:"Resend API key (PRAGER_MAIL_RESEND_API_KEY or RESEND_API_KEY)" flag:"resend-api-key"`

	SMTPAddr     string `usage:"SMTP server address (host:port)" flag:"smtp-addr"`
	SMTPUsername string `usage:"SMTP username" flag:"smtp-username"`
	SMTPPassword string `usage:"SMTP password" flag:"smtp-password"`

	SendTimeout time.Duration `default:"15s" usage:"Bound on a single relay send"`
}

// PricingConfig holds the discount knobs that are operational rather than
// compile-time catalog data.
type PricingConfig struct {
	EarlyBirdEnabled  bool   `default:"false" usage:"Enable the early-bird discount" flag:"early-bird"`
	EarlyBirdDeadline string `default:"2025-11-17T23:59:59" usage:"Early-bird deadline, business-local time" flag:"early-bird-deadline"`
	EarlyBirdRate     string `default:"0.05" usage:"Early-bird fractional rate" flag:"early-bird-rate"`
	Timezone          string `default:"Europe/Budapest" usage:"Business time zone for the deadline"`
}

// EarlyBird parses the configured deadline and rate.
func (c PricingConfig) EarlyBird() (pricing.EarlyBird, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return pricing.EarlyBird{}, errors.Wrap(err, "load timezone")
	}
	deadline, err := time.ParseInLocation("2006-01-02T15:04:05", c.EarlyBirdDeadline, loc)
	if err != nil {
		return pricing.EarlyBird{}, errors.Wrap(err, "parse early-bird deadline")
	}
	rate, err := decimal.NewFromString(c.EarlyBirdRate)
	if err != nil {
		return pricing.EarlyBird{}, errors.Wrap(err, "parse early-bird rate")
	}
	return pricing.EarlyBird{
		Enabled:  c.EarlyBirdEnabled,
		Deadline: deadline,
		Rate:     rate,
	}, nil
}

// RateLimitConfig controls the per-client request limiter.
type RateLimitConfig struct {
	Max    int           `default:"60" usage:"Max requests per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PRAGER",
		Files:     []string{"config.yaml", "/etc/prager/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Vercel,
// Railway, etc.) that use standard names like RESEND_API_KEY and PORT to the
// application's PRAGER_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Mail.ResendAPIKey == "" {
		if v := os.Getenv("RESEND_API_KEY"); v != "" {
			c.Mail.ResendAPIKey = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
