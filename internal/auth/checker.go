package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*TokenVerifier)(nil)

// Checker resolves a token into the id of the user it was issued for.
// Unknown, expired or malformed tokens yield ErrUnauthorized.
type Checker interface {
	UserID(ctx context.Context, token string) (uuid.UUID, error)
}
