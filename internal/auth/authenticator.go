package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserSource loads the persisted document holding the user records.
type UserSource interface {
	Load(ctx context.Context) (*store.Document, error)
}

// Principal is an authenticated user.
type Principal struct {
	Username string     `json:"username"`
	Role     store.Role `json:"role"`
}

// IsAdmin reports whether the principal may approve requests and manage items.
func (p Principal) IsAdmin() bool {
	return p.Role == store.RoleAdmin
}

// Authenticator checks credentials against the users in the ledger document.
type Authenticator struct {
	users UserSource
}

func NewAuthenticator(users UserSource) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the principal for a matching username and password. The
// comparison is case-sensitive.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	doc, err := a.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	user, ok := doc.Users[username]
	if !ok || !MatchPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return &Principal{Username: username, Role: user.Role}, nil
}
