package gate

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/variamos/sessionauth/envelope"
	"github.com/variamos/sessionauth/observe"
	"github.com/variamos/sessionauth/session"
	"github.com/variamos/sessionauth/token"
)

// CookieName is the cookie slot the session token travels in.
const CookieName = "authToken"

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// Gate builds access-control middleware over a session validator.
type Gate struct {
	validator  *session.Validator
	logger     observe.Logger
	metrics    observe.Metrics
	tracer     trace.Tracer
	cookieName string
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used for denied and failed evaluations.
func WithLogger(l observe.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithMetrics sets the metrics sink for gate decisions.
func WithMetrics(m observe.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithCookieName overrides the cookie the token is read from.
func WithCookieName(name string) Option {
	return func(g *Gate) { g.cookieName = name }
}

// New creates a Gate. By default it logs nothing and records nothing.
func New(validator *session.Validator, opts ...Option) *Gate {
	g := &Gate{
		validator:  validator,
		logger:     observe.NewNopLogger(),
		metrics:    observe.NewNopMetrics(),
		tracer:     otel.Tracer("github.com/variamos/sessionauth/gate"),
		cookieName: CookieName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticated passes any request carrying a verified, unexpired
// session token.
func (g *Gate) Authenticated() Middleware {
	return g.middleware("authenticated", nil, nil, func(*session.User) error {
		return nil
	})
}

// HasRoles passes authenticated requests whose user holds at least one
// of the required roles. An empty required list means no role
// constraint.
func (g *Gate) HasRoles(roles ...string) Middleware {
	return g.middleware("has_roles", roles, nil, func(u *session.User) error {
		return checkRoles(u, roles, "has_roles")
	})
}

// HasPermissions passes authenticated requests whose user holds at
// least one of the required permissions, subject to the same role rule
// as HasRoles. Unlike roles, an empty required-permissions list is not
// exempt: it denies every request, so callers must supply at least one
// permission.
func (g *Gate) HasPermissions(permissions, roles []string) Middleware {
	return g.middleware("has_permissions", roles, permissions, func(u *session.User) error {
		if err := checkRoles(u, roles, "has_permissions"); err != nil {
			return err
		}
		return checkPermissions(u, permissions)
	})
}

func (g *Gate) middleware(name string, roles, permissions []string, check func(*session.User) error) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := g.tracer.Start(r.Context(), "gate."+name)
			defer span.End()

			user, status, msg := g.evaluate(r, name, roles, permissions, check)

			span.SetAttributes(attribute.Int("http.status_code", status))
			g.metrics.RecordDecision(ctx, name, status, time.Since(start))

			if status != http.StatusOK {
				envelope.WriteFailure(w, status, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithUser(ctx, user)))
		})
	}
}

// evaluate runs token validation and the gate's authorization check.
// It returns the resolved user and http.StatusOK on success, or the
// failure status plus its user-facing message. A panic during
// evaluation is the 500 safety net; no failure escapes the gate.
func (g *Gate) evaluate(r *http.Request, name string, roles, permissions []string, check func(*session.User) error) (user *session.User, status int, msg string) {
	ctx := r.Context()

	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error(ctx, "unexpected error during gate evaluation",
				observe.Field{Key: "gate", Value: name},
				observe.Field{Key: "roles", Value: roles},
				observe.Field{Key: "permissions", Value: permissions},
				observe.Field{Key: "panic", Value: fmt.Sprint(rec)},
			)
			user, status, msg = nil, http.StatusInternalServerError, MsgInternalError
		}
	}()

	claims, err := g.validator.Validate(g.tokenFromRequest(r))
	if err != nil {
		status, msg := authFailure(err)
		g.logger.Debug(ctx, "session validation failed",
			observe.Field{Key: "gate", Value: name},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, status, msg
	}

	u := session.UserFromClaims(claims)
	if err := check(u); err != nil {
		var denied *DeniedError
		if errors.As(err, &denied) {
			g.logger.Debug(ctx, "authorization denied",
				observe.Field{Key: "gate", Value: name},
				observe.Field{Key: "subject", Value: denied.Subject},
				observe.Field{Key: "reason", Value: denied.Reason},
			)
			return nil, http.StatusForbidden, MsgForbidden
		}
		g.logger.Error(ctx, "unexpected error during gate evaluation",
			observe.Field{Key: "gate", Value: name},
			observe.Field{Key: "roles", Value: roles},
			observe.Field{Key: "permissions", Value: permissions},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, http.StatusInternalServerError, MsgInternalError
	}

	return u, http.StatusOK, ""
}

// tokenFromRequest reads the session token from the configured cookie.
// A missing cookie yields the empty token, which validation rejects.
func (g *Gate) tokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(g.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// authFailure maps a validation error to its HTTP status and message.
// Expiration gets its own message; every other failure, including a
// keystore with no usable key, collapses into the generic one.
func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, token.ErrMissingToken):
		return http.StatusUnauthorized, MsgLoginRequired
	case errors.Is(err, session.ErrExpired):
		return http.StatusUnauthorized, MsgSessionExpired
	default:
		return http.StatusUnauthorized, MsgValidationFailed
	}
}

func checkRoles(u *session.User, required []string, gateName string) error {
	if len(required) == 0 {
		return nil
	}
	if u != nil && intersects(u.Roles, required) {
		return nil
	}
	return &DeniedError{
		Subject: subjectOf(u),
		Gate:    gateName,
		Reason:  "user holds none of the required roles",
	}
}

func checkPermissions(u *session.User, required []string) error {
	if u != nil && intersects(u.Permissions, required) {
		return nil
	}
	return &DeniedError{
		Subject: subjectOf(u),
		Gate:    "has_permissions",
		Reason:  "user holds none of the required permissions",
	}
}

func intersects(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func subjectOf(u *session.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
