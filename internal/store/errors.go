package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameExists is returned when an insert collides with an
	// existing username.
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when an insert collides with an
	// existing email.
	ErrEmailExists = errors.New("email already exists")
)

const pqUniqueViolation = "23505"

// mapUserConstraintErr translates a postgres unique violation on the users
// table into the matching sentinel. Uniqueness is enforced at the store
// level so concurrent registrations cannot both succeed.
func mapUserConstraintErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqUniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return ErrUsernameExists
	case "users_email_key":
		return ErrEmailExists
	}
	return err
}
