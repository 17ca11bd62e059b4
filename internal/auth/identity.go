// Package auth builds the request-scoped identity every core operation
// receives. Role and id are resolved once at the boundary; nothing in the
// services reads session state.
package auth

import (
	"errors"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"

	"planify/models"
)

var (
	ErrUnauthenticated = errors.New("auth: no authenticated identity")
	ErrForbidden       = errors.New("auth: role not allowed")
)

// Identity carries the authenticated caller through every core operation.
type Identity struct {
	ID   string
	Role string
}

// FromRequest extracts the identity from the PocketBase auth record.
func FromRequest(e *core.RequestEvent) (*Identity, error) {
	if e.Auth == nil {
		return nil, ErrUnauthenticated
	}

	role := e.Auth.GetString("role")
	if role == "" {
		role = models.RoleCustomer
	}

	return &Identity{
		ID:   e.Auth.Id,
		Role: role,
	}, nil
}

// Require resolves the identity and checks it against the allowed roles.
func Require(e *core.RequestEvent, roles ...string) (*Identity, error) {
	id, err := FromRequest(e)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		if id.Role == role {
			return id, nil
		}
	}
	return nil, ErrForbidden
}

// HashAccessCode hashes a guest access code for storage.
func HashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAccessCode compares a presented guest access code against its hash.
func CheckAccessCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
