package auth

import (
	"net/http"
	"strings"
)

const bearerScheme = "Bearer"

// Authenticator resolves the caller identity from the Authorization header
// and attaches it to the request context. It never rejects a request:
// missing, malformed, expired, or orphaned tokens all fall through as
// anonymous, and the authorization policy downstream decides the outcome.
type Authenticator struct {
	tokens   *TokenService
	resolver *Resolver
}

// NewAuthenticator constructs an Authenticator from its collaborators.
func NewAuthenticator(tokens *TokenService, resolver *Resolver) *Authenticator {
	return &Authenticator{tokens: tokens, resolver: resolver}
}

// Middleware returns the chi middleware performing the authentication pass.
// It runs at most once per request: an identity already attached by an
// earlier stage is left untouched.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := a.tokens.ExtractSubject(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if _, attached := SecurityContextFrom(r.Context()); attached {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := a.resolver.Resolve(r.Context(), subject)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := a.tokens.Validate(tokenString)
			if err != nil || claims.Subject != identity.Username {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSecurityContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
