package auth

import (
	"context"
	"fmt"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

// LocalAuthProvider validates tokens this service signed itself.
type LocalAuthProvider struct {
	tokens *TokenManager
	logger internal.Logger
}

func NewLocalAuthProvider(tokens *TokenManager, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{tokens: tokens, logger: logger}
}

func (a *LocalAuthProvider) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.tokens.Validate(token)
	if err != nil {
		a.logger.Debugf("rejected token: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrUnauthorized, err)
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
