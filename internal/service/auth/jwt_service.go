package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and checks the access tokens that identify the acting
// user on API and websocket requests.
type JWTService interface {
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies the signature and time claims of tokenString.
	// A nil error guarantees a non-nil Claims with TokenType "access".
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string // jti
}
