// Command variamos-authd is a small HTTP service demonstrating the
// session middleware: it issues session tokens, publishes the verify
// key as JWKS, and serves routes behind the access gates.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"golang.org/x/sync/errgroup"

	"github.com/variamos/sessionauth/config"
	"github.com/variamos/sessionauth/envelope"
	"github.com/variamos/sessionauth/gate"
	"github.com/variamos/sessionauth/health"
	"github.com/variamos/sessionauth/keystore"
	"github.com/variamos/sessionauth/observe"
	"github.com/variamos/sessionauth/session"
	"github.com/variamos/sessionauth/token"
)

const serviceName = "variamos-authd"

func main() {
	cfg := config.Load(".env")
	logger := observe.NewLogger(cfg.LogLevel).WithComponent(serviceName)
	ctx := context.Background()

	keys, report := keystore.Load(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	for _, err := range report.Errors {
		logger.Error(ctx, "key load failed", observe.Field{Key: "error", Value: err.Error()})
	}
	logger.Info(ctx, "keystore initialized",
		observe.Field{Key: "signingLoaded", Value: report.SigningLoaded},
		observe.Field{Key: "verificationLoaded", Value: report.VerificationLoaded},
	)

	shutdownTelemetry, err := setupTelemetry(ctx)
	if err != nil {
		logger.Error(ctx, "telemetry setup failed", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	metrics, err := observe.NewMetrics(otel.Meter(serviceName))
	if err != nil {
		logger.Error(ctx, "metrics setup failed", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	codec := token.NewCodec(keys, cfg.TokenLifetime)
	validator := session.NewValidator(codec)
	gates := gate.New(validator,
		gate.WithLogger(logger.WithComponent("gate")),
		gate.WithMetrics(metrics),
	)

	agg := health.NewAggregator(health.NewKeyMaterialChecker(keys))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router(codec, gates, keys, agg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, runCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: cfg.HTTPAddr})
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error(ctx, "server error", observe.Field{Key: "error", Value: err.Error()})
	}
	if err := shutdownTelemetry(ctx); err != nil {
		logger.Warn(ctx, "telemetry shutdown failed", observe.Field{Key: "error", Value: err.Error()})
	}
}

func router(codec *token.Codec, gates *gate.Gate, keys *keystore.Store, agg *health.Aggregator) http.Handler {
	r := chi.NewRouter()

	r.Post("/session", issueSession(codec))
	r.Get("/jwks.json", serveJWKS(keys))
	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(agg))

	r.Group(func(r chi.Router) {
		r.Use(gates.Authenticated())
		r.Get("/me", func(w http.ResponseWriter, req *http.Request) {
			envelope.Write(w, http.StatusOK, envelope.Success(session.UserFromContext(req.Context())))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(gates.HasRoles("admin"))
		r.Get("/admin/status", func(w http.ResponseWriter, req *http.Request) {
			envelope.Write(w, http.StatusOK, envelope.Success(map[string]string{"status": "ok"}))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(gates.HasPermissions([]string{"models:read"}, nil))
		r.Get("/models", func(w http.ResponseWriter, req *http.Request) {
			envelope.Write(w, http.StatusOK, envelope.SuccessWithCount([]string{}, 0))
		})
	})

	return r
}

// issueSession issues a signed token for the subject in the request
// body and sets it as the authToken cookie.
func issueSession(codec *token.Codec) http.HandlerFunc {
	type request struct {
		Subject  token.Subject `json:"subject"`
		Audience string        `json:"audience"`
	}
	type response struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			envelope.WriteFailure(w, http.StatusBadRequest, "Malformed request body.")
			return
		}

		signed, err := codec.Issue(&req.Subject, req.Audience)
		if err != nil {
			envelope.WriteFailure(w, http.StatusInternalServerError, "Could not create session token.")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     gate.CookieName,
			Value:    signed,
			Path:     "/",
			MaxAge:   int(codec.Lifetime().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		envelope.Write(w, http.StatusOK, envelope.Success(response{
			Token:     signed,
			ExpiresIn: int(codec.Lifetime().Seconds()),
		}))
	}
}

func serveJWKS(keys *keystore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := keys.JWKS()
		if err != nil {
			envelope.WriteFailure(w, http.StatusNotFound, "No verification key available.")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	}
}

// setupTelemetry wires stdout exporters for metrics and traces and
// returns a combined shutdown function.
func setupTelemetry(ctx context.Context) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(30*time.Second))),
	)
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := stdouttrace.New()
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)

	return func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}, nil
}
