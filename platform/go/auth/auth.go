// Package auth issues and verifies portal session tokens. Identity itself is
// an external concern: a session token only binds a request to a tenant slug.
package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const ctxSessionClaims ctxKey = "NETFLIZ_SESSION_CLAIMS"

// SessionFromContext returns the verified session claims attached by the JWT
// middleware, if any.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	v := ctx.Value(ctxSessionClaims)
	if v == nil {
		return nil, false
	}
	claims, ok := v.(*SessionClaims)
	return claims, ok
}

// JWT returns middleware that verifies a bearer token when present and stores
// its claims on the context. Requests without a token pass through untouched;
// handlers decide whether an anonymous caller is acceptable.
func JWT(verifier *TokenVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		panic("auth.JWT: verifier must not be nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, found := ExtractJWTToken(r)
			if token == "" || !found {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="portal", error="invalid_token"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxSessionClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractJWTToken returns the bearer token from the Authorization header.
func ExtractJWTToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	const prefix = "Bearer "
	// Case-insensitive prefix match.
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(authHeader[len(prefix):]), true
}
