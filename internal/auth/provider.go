package auth

import "context"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Identity, error)
}
