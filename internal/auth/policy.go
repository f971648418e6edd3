package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/restcatalog/apiserver/types"
)

// Rule maps a route pattern to the roles allowed through it. A pattern is
// either an exact path or a prefix ending in "/*". Public rules skip
// authentication entirely; a rule with no roles and Public unset admits any
// authenticated identity.
type Rule struct {
	Pattern string
	Public  bool
	Roles   []types.Role
}

// Policy is an ordered route access table evaluated top to bottom,
// first match wins. Unmatched routes require an authenticated identity.
// The table is plain data, fixed at startup.
type Policy struct {
	rules []Rule
}

// NewPolicy constructs a Policy from an ordered rule list.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Middleware enforces the policy against the identity attached by the
// authenticator. It must run after the authentication pass.
func (p *Policy) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule := p.match(r.URL.Path)
			if rule.Public {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := SecurityContextFrom(r.Context())
			if !ok {
				WriteUnauthenticated(w)
				return
			}

			if len(rule.Roles) > 0 && !roleAllowed(identity.Role, rule.Roles) {
				WriteForbidden(w, fmt.Sprintf("role %s is not permitted on %s", identity.Role, r.URL.Path))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (p *Policy) match(path string) Rule {
	for _, rule := range p.rules {
		if matchPattern(rule.Pattern, path) {
			return rule
		}
	}
	// Default: any authenticated identity.
	return Rule{}
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

func roleAllowed(role types.Role, allowed []types.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// WriteUnauthenticated writes the fixed 401 response and terminates the chain.
func WriteUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "Invalid access. Please authenticate.",
	})
}

// WriteForbidden writes the 403 response carrying the underlying detail.
func WriteForbidden(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Access denied",
		"error":   detail,
	})
}
