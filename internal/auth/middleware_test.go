package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users map[string]types.User
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (types.User, error) {
	user, ok := f.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func authenticate(t *testing.T, authenticator *Authenticator, header string) (Identity, bool) {
	t.Helper()

	var (
		identity Identity
		attached bool
	)
	handler := authenticator.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, attached = SecurityContextFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/category/all", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The authenticator itself never rejects.
	require.Equal(t, http.StatusOK, rec.Code)
	return identity, attached
}

func TestAuthenticatorAttachesIdentity(t *testing.T) {
	tokens := newTestTokenService(time.Now())
	users := &fakeUserStore{users: map[string]types.User{
		"alice": {ID: 7, Username: "alice", Role: types.RoleUser},
	}}
	authenticator := NewAuthenticator(tokens, NewResolver(users))

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	identity, attached := authenticate(t, authenticator, "Bearer "+token)
	require.True(t, attached)
	assert.Equal(t, Identity{ID: 7, Username: "alice", Role: types.RoleUser}, identity)
}

func TestAuthenticatorAnonymousFallthrough(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokenService(issuedAt)
	users := &fakeUserStore{users: map[string]types.User{
		"alice": {ID: 7, Username: "alice", Role: types.RoleUser},
	}}

	valid, err := tokens.Issue("alice")
	require.NoError(t, err)
	orphan, err := tokens.Issue("ghost")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		advance time.Duration
	}{
		{name: "no header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "unknown subject", header: "Bearer " + orphan},
		{name: "expired token", header: "Bearer " + valid, advance: 25 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens.now = func() time.Time { return issuedAt.Add(tt.advance) }
			authenticator := NewAuthenticator(tokens, NewResolver(users))
			_, attached := authenticate(t, authenticator, tt.header)
			assert.False(t, attached)
		})
	}
}

func TestSecurityContextSetIfAbsent(t *testing.T) {
	ctx := context.Background()

	first := Identity{ID: 1, Username: "alice", Role: types.RoleUser}
	second := Identity{ID: 2, Username: "bob", Role: types.RoleAdmin}

	ctx = WithSecurityContext(ctx, first)
	ctx = WithSecurityContext(ctx, second)

	identity, ok := SecurityContextFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, first, identity, "an attached identity is never overwritten")
}

func TestAuthenticatorDoesNotReResolve(t *testing.T) {
	tokens := newTestTokenService(time.Now())
	users := &fakeUserStore{users: map[string]types.User{
		"alice": {ID: 7, Username: "alice", Role: types.RoleUser},
	}}
	authenticator := NewAuthenticator(tokens, NewResolver(users))

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	pre := Identity{ID: 99, Username: "pre-attached", Role: types.RoleAdmin}
	var seen Identity
	handler := authenticator.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SecurityContextFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req = req.WithContext(WithSecurityContext(req.Context(), pre))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, pre, seen)
}
