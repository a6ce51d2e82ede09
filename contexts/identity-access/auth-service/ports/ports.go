package ports

import (
	"context"
	"time"

	"ballotbox/contexts/identity-access/auth-service/domain/entities"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User) error
	GetUserByID(ctx context.Context, userID string) (entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (entities.User, error)
}

// Claims is the verified content of an access or refresh token.
type Claims struct {
	TokenID   string
	UserID    string
	TokenUse  string
	ExpiresAt time.Time
}

// TokenService issues and verifies the signed token pair. VerifyToken
// checks signature and expiry only; revocation is the store's concern.
type TokenService interface {
	IssuePair(ctx context.Context, userID string) (entities.TokenPair, error)
	VerifyToken(ctx context.Context, token string, tokenUse string) (Claims, error)
}

// RevokedTokenStore remembers refresh-token ids blacklisted at logout.
type RevokedTokenStore interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PasswordHasher hides the hash algorithm from the application layer.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}
