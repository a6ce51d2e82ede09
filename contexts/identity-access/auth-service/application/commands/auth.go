package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "ballotbox/contexts/identity-access/auth-service/application"
	"ballotbox/contexts/identity-access/auth-service/domain/entities"
	domainerrors "ballotbox/contexts/identity-access/auth-service/domain/errors"
	"ballotbox/contexts/identity-access/auth-service/ports"
)

const minPasswordLength = 8

type RegisterCommand struct {
	Username string
	Email    string
	Password string
}

type LoginCommand struct {
	Username string
	Password string
}

// AuthUseCase implements account lifecycle and credential checks. The hash
// algorithm lives behind the PasswordHasher port.
type AuthUseCase struct {
	Users   ports.UserRepository
	Tokens  ports.TokenService
	Revoked ports.RevokedTokenStore
	Hasher  ports.PasswordHasher
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// Register creates the account and logs the user straight in: the original
// sign-up flow hands back a token pair with the created user.
func (uc AuthUseCase) Register(ctx context.Context, cmd RegisterCommand) (entities.User, entities.TokenPair, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if username == "" || email == "" || !strings.Contains(email, "@") {
		return entities.User{}, entities.TokenPair{}, domainerrors.ErrInvalidCredentialsInput
	}
	if len(cmd.Password) < minPasswordLength {
		return entities.User{}, entities.TokenPair{}, domainerrors.ErrInvalidCredentialsInput
	}

	hash, err := uc.Hasher.Hash(cmd.Password)
	if err != nil {
		logger.Error("password hashing failed",
			"event", "auth_register_hash_failed",
			"module", "identity-access/auth-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.User{}, entities.TokenPair{}, err
	}

	userID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, entities.TokenPair{}, err
	}
	user := entities.User{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    uc.Clock.Now().UTC(),
	}
	if err := uc.Users.CreateUser(ctx, user); err != nil {
		return entities.User{}, entities.TokenPair{}, err
	}

	pair, err := uc.Tokens.IssuePair(ctx, user.UserID)
	if err != nil {
		return entities.User{}, entities.TokenPair{}, err
	}

	logger.Info("user registered",
		"event", "auth_user_registered",
		"module", "identity-access/auth-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, pair, nil
}

func (uc AuthUseCase) Login(ctx context.Context, cmd LoginCommand) (entities.TokenPair, entities.User, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" {
		return entities.TokenPair{}, entities.User{}, domainerrors.ErrInvalidCredentialsInput
	}

	user, err := uc.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return entities.TokenPair{}, entities.User{}, domainerrors.ErrInvalidCredentials
		}
		return entities.TokenPair{}, entities.User{}, err
	}
	if uc.Hasher.Compare(user.PasswordHash, cmd.Password) != nil {
		logger.Warn("login rejected",
			"event", "auth_login_rejected",
			"module", "identity-access/auth-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return entities.TokenPair{}, entities.User{}, domainerrors.ErrInvalidCredentials
	}

	pair, err := uc.Tokens.IssuePair(ctx, user.UserID)
	if err != nil {
		return entities.TokenPair{}, entities.User{}, err
	}
	logger.Info("user logged in",
		"event", "auth_user_logged_in",
		"module", "identity-access/auth-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return pair, user, nil
}

// Refresh exchanges a live refresh token for a new pair. Revoked tokens are
// rejected before any new credential is minted, and the consumed token is
// blacklisted so each refresh token grants at most one rotation.
func (uc AuthUseCase) Refresh(ctx context.Context, refreshToken string) (entities.TokenPair, error) {
	claims, err := uc.Tokens.VerifyToken(ctx, refreshToken, "refresh")
	if err != nil {
		return entities.TokenPair{}, err
	}
	revoked, err := uc.Revoked.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return entities.TokenPair{}, err
	}
	if revoked {
		return entities.TokenPair{}, domainerrors.ErrTokenRevoked
	}
	pair, err := uc.Tokens.IssuePair(ctx, claims.UserID)
	if err != nil {
		return entities.TokenPair{}, err
	}
	if err := uc.Revoked.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return entities.TokenPair{}, err
	}
	return pair, nil
}

// Logout blacklists the refresh token until its natural expiry.
func (uc AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	logger := application.ResolveLogger(uc.Logger)
	claims, err := uc.Tokens.VerifyToken(ctx, refreshToken, "refresh")
	if err != nil {
		return err
	}
	if err := uc.Revoked.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	logger.Info("refresh token revoked",
		"event", "auth_token_revoked",
		"module", "identity-access/auth-service",
		"layer", "application",
		"user_id", claims.UserID,
	)
	return nil
}

func (uc AuthUseCase) Profile(ctx context.Context, userID string) (entities.User, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return entities.User{}, domainerrors.ErrInvalidCredentialsInput
	}
	return uc.Users.GetUserByID(ctx, trimmed)
}

// VerifyAccess resolves a bearer access token to the owning user id.
func (uc AuthUseCase) VerifyAccess(ctx context.Context, accessToken string) (string, error) {
	claims, err := uc.Tokens.VerifyToken(ctx, accessToken, "access")
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
