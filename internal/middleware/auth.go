// Package middleware adapts the request's bearer token into an
// authenticated principal on the request context, consulting the
// Revocation Store (C9) before the request reaches the Gate. Grounded on
// the teacher's internal/auth/jwt.go (skipper/errorResponder idiom,
// context-key pattern, SHA-256 token hashing), rewritten against
// internal/credentials' own token format instead of an external OIDC
// provider.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/terraconstructs/iamcore/internal/credentials"
	"github.com/terraconstructs/iamcore/internal/revocation"
)

type claimsContextKey struct{}
type tokenHashContextKey struct{}

var (
	defaultClaimsContextKey    = claimsContextKey{}
	defaultTokenHashContextKey = tokenHashContextKey{}
)

// Skipper decides whether a request bypasses authentication.
type Skipper func(*http.Request) bool

// ErrorResponder writes an authentication failure to the response.
type ErrorResponder func(http.ResponseWriter, *http.Request, error)

type options struct {
	skipper        Skipper
	errorResponder ErrorResponder
}

// Option customizes Authenticate.
type Option func(*options)

// WithSkipper overrides the default public-path skipper.
func WithSkipper(s Skipper) Option {
	return func(o *options) {
		if s != nil {
			o.skipper = s
		}
	}
}

// WithErrorResponder overrides the default 401 responder.
func WithErrorResponder(r ErrorResponder) Option {
	return func(o *options) {
		if r != nil {
			o.errorResponder = r
		}
	}
}

// Authenticate builds chi-compatible middleware that extracts a bearer
// access token, parses it via issuer, checks it against rev, and attaches
// the resulting claims and token hash to the request context. Requests
// the skipper matches pass through unauthenticated.
func Authenticate(issuer *credentials.Issuer, rev *revocation.Store, opts ...Option) func(http.Handler) http.Handler {
	o := options{skipper: defaultSkipper, errorResponder: defaultErrorResponder}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if o.skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				o.errorResponder(w, r, errMissingToken)
				return
			}

			claims, err := issuer.ParseAccessToken(token)
			if err != nil {
				o.errorResponder(w, r, err)
				return
			}

			tokenHash := credentials.HashToken(token)
			revoked, err := rev.IsRevoked(r.Context(), tokenHash, claims.UserID, claims.IssuedAt.Time)
			if err != nil || revoked {
				o.errorResponder(w, r, errTokenRevoked)
				return
			}

			ctx := context.WithValue(r.Context(), defaultClaimsContextKey, claims)
			ctx = context.WithValue(ctx, defaultTokenHashContextKey, tokenHash)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated principal's access claims.
func ClaimsFromContext(ctx context.Context) (*credentials.AccessClaims, bool) {
	claims, ok := ctx.Value(defaultClaimsContextKey).(*credentials.AccessClaims)
	return claims, ok
}

// TokenHashFromContext returns the SHA-256 hash of the request's bearer
// token, for use when recording a logout revocation.
func TokenHashFromContext(ctx context.Context) (string, bool) {
	hash, ok := ctx.Value(defaultTokenHashContextKey).(string)
	return hash, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

var publicPrefixes = []string{"/healthz", "/sts/login", "/sts/refresh"}

func defaultSkipper(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

func defaultErrorResponder(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, "unauthenticated", http.StatusUnauthorized)
}
