package gate

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/variamos/sessionauth/envelope"
	"github.com/variamos/sessionauth/keystore"
	"github.com/variamos/sessionauth/session"
	"github.com/variamos/sessionauth/token"
)

type fixture struct {
	key   *rsa.PrivateKey
	codec *token.Codec
	gate  *Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	codec := token.NewCodec(keystore.New(key, nil), time.Minute)
	return &fixture{
		key:   key,
		codec: codec,
		gate:  New(session.NewValidator(codec)),
	}
}

func (f *fixture) issue(t *testing.T, subject *token.Subject) string {
	t.Helper()
	signed, err := f.codec.Issue(subject, "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

// serve runs one request through the middleware and reports whether the
// inner handler was reached, plus the user it saw.
func serve(mw Middleware, cookie string) (*httptest.ResponseRecorder, bool, *session.User) {
	var forwarded bool
	var seen *session.User

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = true
		seen = session.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, forwarded, seen
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) envelope.Envelope {
	t.Helper()
	var env envelope.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return env
}

func TestAuthenticated(t *testing.T) {
	f := newFixture(t)
	subject := &token.Subject{ID: "user-1", Name: "Ada", UserName: "ada", Roles: []string{"admin"}}

	t.Run("no token", func(t *testing.T) {
		rec, forwarded, _ := serve(f.gate.Authenticated(), "")

		if forwarded {
			t.Error("request forwarded without a token")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		env := decodeFailure(t, rec)
		if env.ErrorCode != 401 || env.Message != MsgLoginRequired {
			t.Errorf("body = %+v, want {401 %q}", env, MsgLoginRequired)
		}
	})

	t.Run("valid token forwards with user in context", func(t *testing.T) {
		rec, forwarded, user := serve(f.gate.Authenticated(), f.issue(t, subject))

		if !forwarded {
			t.Fatalf("request not forwarded, status = %d body = %s", rec.Code, rec.Body)
		}
		if user == nil {
			t.Fatal("no user attached to context")
		}
		if user.ID != "user-1" || user.UserName != "ada" {
			t.Errorf("user = %+v", user)
		}
		if !user.HasRole("admin") {
			t.Errorf("user.Roles = %v, want to include admin", user.Roles)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		signed := f.issue(t, subject)
		rec, forwarded, _ := serve(f.gate.Authenticated(), signed[:len(signed)-2]+"xx")

		if forwarded {
			t.Error("request forwarded with tampered token")
		}
		env := decodeFailure(t, rec)
		if env.ErrorCode != 401 || env.Message != MsgValidationFailed {
			t.Errorf("body = %+v, want {401 %q}", env, MsgValidationFailed)
		}
	})

	t.Run("token signed by untrusted key", func(t *testing.T) {
		other := newFixture(t)
		rec, forwarded, _ := serve(f.gate.Authenticated(), other.issue(t, subject))

		if forwarded {
			t.Error("request forwarded with untrusted token")
		}
		env := decodeFailure(t, rec)
		if env.Message != MsgValidationFailed {
			t.Errorf("message = %q, want %q", env.Message, MsgValidationFailed)
		}
	})

	t.Run("expired session has its own message", func(t *testing.T) {
		expired, err := jwt.NewWithClaims(jwt.SigningMethodRS256, token.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}).SignedString(f.key)
		if err != nil {
			t.Fatal(err)
		}

		rec, forwarded, _ := serve(f.gate.Authenticated(), expired)

		if forwarded {
			t.Error("request forwarded with expired session")
		}
		env := decodeFailure(t, rec)
		if env.ErrorCode != 401 || env.Message != MsgSessionExpired {
			t.Errorf("body = %+v, want {401 %q}", env, MsgSessionExpired)
		}
	})

	t.Run("empty keystore rejects any token", func(t *testing.T) {
		emptyGate := New(session.NewValidator(token.NewCodec(keystore.New(nil, nil), time.Minute)))
		rec, forwarded, _ := serve(emptyGate.Authenticated(), f.issue(t, subject))

		if forwarded {
			t.Error("request forwarded with no key material")
		}
		env := decodeFailure(t, rec)
		if env.ErrorCode != 401 || env.Message != MsgValidationFailed {
			t.Errorf("body = %+v, want {401 %q}", env, MsgValidationFailed)
		}
	})
}

func TestHasRoles(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		userRoles   []string
		required    []string
		wantForward bool
		wantStatus  int
	}{
		{
			name:        "empty required list passes everyone",
			userRoles:   nil,
			required:    nil,
			wantForward: true,
		},
		{
			name:        "single matching role",
			userRoles:   []string{"admin"},
			required:    []string{"admin", "editor"},
			wantForward: true,
		},
		{
			name:       "no intersection",
			userRoles:  []string{"viewer"},
			required:   []string{"admin", "editor"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "user without roles",
			userRoles:  nil,
			required:   []string{"admin"},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed := f.issue(t, &token.Subject{ID: "user-1", Roles: tt.userRoles})
			rec, forwarded, _ := serve(f.gate.HasRoles(tt.required...), signed)

			if forwarded != tt.wantForward {
				t.Fatalf("forwarded = %v, want %v (status %d)", forwarded, tt.wantForward, rec.Code)
			}
			if !tt.wantForward {
				env := decodeFailure(t, rec)
				if rec.Code != tt.wantStatus || env.Message != MsgForbidden {
					t.Errorf("response = %d %+v", rec.Code, env)
				}
			}
		})
	}

	t.Run("unauthenticated is 401, not 403", func(t *testing.T) {
		rec, forwarded, _ := serve(f.gate.HasRoles("admin"), "")

		if forwarded {
			t.Error("request forwarded without a token")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestHasPermissions(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		subject     *token.Subject
		permissions []string
		roles       []string
		wantForward bool
	}{
		{
			name:        "permission and role both intersect",
			subject:     &token.Subject{ID: "u", Roles: []string{"admin"}, Permissions: []string{"models:read"}},
			permissions: []string{"models:read"},
			roles:       []string{"admin"},
			wantForward: true,
		},
		{
			name:        "permission intersects, no role constraint",
			subject:     &token.Subject{ID: "u", Permissions: []string{"models:read"}},
			permissions: []string{"models:read", "models:write"},
			roles:       nil,
			wantForward: true,
		},
		{
			name:        "role matches but permission does not",
			subject:     &token.Subject{ID: "u", Roles: []string{"admin"}, Permissions: []string{"models:read"}},
			permissions: []string{"models:delete"},
			roles:       []string{"admin"},
			wantForward: false,
		},
		{
			name:        "role mismatch fails before permissions",
			subject:     &token.Subject{ID: "u", Roles: []string{"viewer"}, Permissions: []string{"models:read"}},
			permissions: []string{"models:read"},
			roles:       []string{"admin"},
			wantForward: false,
		},
		{
			// Empty required permissions are not exempt: the
			// intersection is always empty, so the gate denies.
			name:        "empty required permissions always denies",
			subject:     &token.Subject{ID: "u", Roles: []string{"admin"}, Permissions: []string{"models:read"}},
			permissions: nil,
			roles:       nil,
			wantForward: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed := f.issue(t, tt.subject)
			rec, forwarded, _ := serve(f.gate.HasPermissions(tt.permissions, tt.roles), signed)

			if forwarded != tt.wantForward {
				t.Fatalf("forwarded = %v, want %v (status %d)", forwarded, tt.wantForward, rec.Code)
			}
			if !tt.wantForward {
				env := decodeFailure(t, rec)
				if rec.Code != http.StatusForbidden || env.ErrorCode != 403 || env.Message != MsgForbidden {
					t.Errorf("response = %d %+v", rec.Code, env)
				}
			}
		})
	}
}

func TestGate_CustomCookieName(t *testing.T) {
	f := newFixture(t)
	g := New(session.NewValidator(f.codec), WithCookieName("sid"))
	signed := f.issue(t, &token.Subject{ID: "user-1"})

	handler := g.Authenticated()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: signed})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// A panic inside the authorization check is caught and reported as 500,
// never propagated past the gate.
func TestGate_InternalErrorMapsTo500(t *testing.T) {
	f := newFixture(t)
	signed := f.issue(t, &token.Subject{ID: "user-1"})

	mw := f.gate.middleware("boom", []string{"admin"}, nil, func(*session.User) error {
		panic("evaluation blew up")
	})

	rec, forwarded, _ := serve(mw, signed)

	if forwarded {
		t.Error("request forwarded after panic")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	env := decodeFailure(t, rec)
	if env.ErrorCode != 500 || env.Message != MsgInternalError {
		t.Errorf("body = %+v, want {500 %q}", env, MsgInternalError)
	}
}
