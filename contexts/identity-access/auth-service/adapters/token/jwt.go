// Package tokenadapter signs and verifies the module's JWT pair.
package tokenadapter

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ballotbox/contexts/identity-access/auth-service/domain/entities"
	domainerrors "ballotbox/contexts/identity-access/auth-service/domain/errors"
	"ballotbox/contexts/identity-access/auth-service/ports"
)

type claims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// JWTService issues HS256-signed access and refresh tokens. Each token
// carries a jti so refresh tokens can be blacklisted individually.
type JWTService struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      ports.Clock
}

func (s JWTService) IssuePair(_ context.Context, userID string) (entities.TokenPair, error) {
	now := s.now()
	access, err := s.sign(userID, "access", now, s.AccessTTL)
	if err != nil {
		return entities.TokenPair{}, err
	}
	refresh, err := s.sign(userID, "refresh", now, s.RefreshTTL)
	if err != nil {
		return entities.TokenPair{}, err
	}
	return entities.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s JWTService) VerifyToken(_ context.Context, token string, tokenUse string) (ports.Claims, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ports.Claims{}, domainerrors.ErrTokenInvalid
	}
	if parsed.TokenUse != tokenUse || parsed.Subject == "" || parsed.ID == "" {
		return ports.Claims{}, domainerrors.ErrTokenInvalid
	}
	expiresAt := time.Time{}
	if parsed.ExpiresAt != nil {
		expiresAt = parsed.ExpiresAt.Time
	}
	return ports.Claims{
		TokenID:   parsed.ID,
		UserID:    parsed.Subject,
		TokenUse:  parsed.TokenUse,
		ExpiresAt: expiresAt,
	}, nil
}

func (s JWTService) sign(userID string, tokenUse string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		TokenUse: tokenUse,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.Secret)
}

func (s JWTService) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

var _ ports.TokenService = JWTService{}
