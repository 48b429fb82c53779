package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pragerfoto/mentor-order-api/internal/handler"
	"github.com/pragerfoto/mentor-order-api/internal/mail"
	"github.com/pragerfoto/mentor-order-api/internal/order"
	"github.com/pragerfoto/mentor-order-api/internal/pricing"
	"github.com/pragerfoto/mentor-order-api/pkg/health"
	"github.com/pragerfoto/mentor-order-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr), zap.String("transport", cfg.Mail.Transport))

	earlyBird, err := cfg.Pricing.EarlyBird()
	if err != nil {
		return errors.Wrap(err, "pricing config")
	}
	engine := pricing.NewEngine(earlyBird)

	relay, err := newRelay(cfg.Mail)
	if err != nil {
		// Configuration detail stays in operator logs; callers of the API
		// never see it.
		lg.Error("Mail relay configuration invalid", zap.Error(err))
		return errors.Wrap(err, "mail relay")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	h := handler.New(engine, relay, cfg.Mail.SendTimeout)

	root := chi.NewRouter()
	root.Get("/livez", healthSvc.LiveEndpoint)
	root.Get("/readyz", healthSvc.ReadyEndpoint)
	root.Mount("/api", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.Mail.SendTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(root,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Instrument("mentor-order-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		// Drain: flip readiness first so load balancers stop routing here,
		// then shut the listener down within the configured bound.
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// newRelay builds the configured delivery transport.
func newRelay(cfg MailConfig) (order.Relay, error) {
	switch cfg.Transport {
	case "resend":
		return mail.NewResendRelay(mail.ResendConfig{
			APIKey: cfg.ResendAPIKey,
			From:   cfg.From,
			To:     cfg.To,
		})
	case "smtp":
		return mail.NewSMTPRelay(mail.SMTPConfig{
			Addr:     cfg.SMTPAddr,
			From:     cfg.From,
			To:       cfg.To,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	default:
		return nil, &order.ConfigurationError{Detail: "unknown mail transport " + cfg.Transport}
	}
}
