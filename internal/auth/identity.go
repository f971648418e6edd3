package auth

import (
	"context"
	"errors"

	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
)

// Identity is the resolved caller attached to a request after a token
// validates.
type Identity struct {
	ID       int
	Username string
	Role     types.Role
}

// UserStore is the credential store capability the resolver depends on.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// Resolver maps a token subject to a full identity. It is the single
// source of truth for whether a username currently exists: a valid token
// for a since-deleted user resolves to ErrUserNotFound.
type Resolver struct {
	store UserStore
}

// NewResolver constructs a Resolver over the given user store.
func NewResolver(userStore UserStore) *Resolver {
	return &Resolver{store: userStore}
}

// Resolve looks up the username and returns the matching identity.
func (r *Resolver) Resolve(ctx context.Context, username string) (Identity, error) {
	user, err := r.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}
	return Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}
