// Package httpadapter translates transport DTOs into auth use case calls.
package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotbox/contexts/identity-access/auth-service/application/commands"
	"ballotbox/contexts/identity-access/auth-service/domain/entities"
	transporthttp "ballotbox/contexts/identity-access/auth-service/transport/http"
)

type Handler struct {
	Auth   commands.AuthUseCase
	Logger *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req transporthttp.RegisterRequest) (transporthttp.RegisterResponse, error) {
	user, pair, err := h.Auth.Register(ctx, commands.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return transporthttp.RegisterResponse{}, err
	}
	return transporthttp.RegisterResponse{
		Message: "User created successfully",
		User:    userResponse(user),
		Tokens: transporthttp.TokenPairResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
	}, nil
}

func (h Handler) LoginHandler(ctx context.Context, req transporthttp.LoginRequest) (transporthttp.LoginResponse, error) {
	pair, user, err := h.Auth.Login(ctx, commands.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return transporthttp.LoginResponse{}, err
	}
	return transporthttp.LoginResponse{
		User: userResponse(user),
		Tokens: transporthttp.TokenPairResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
	}, nil
}

func (h Handler) RefreshHandler(ctx context.Context, req transporthttp.RefreshRequest) (transporthttp.TokenPairResponse, error) {
	pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return transporthttp.TokenPairResponse{}, err
	}
	return transporthttp.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (h Handler) LogoutHandler(ctx context.Context, req transporthttp.LogoutRequest) error {
	return h.Auth.Logout(ctx, req.RefreshToken)
}

func (h Handler) ProfileHandler(ctx context.Context, userID string) (transporthttp.UserResponse, error) {
	user, err := h.Auth.Profile(ctx, userID)
	if err != nil {
		return transporthttp.UserResponse{}, err
	}
	return userResponse(user), nil
}

// VerifyAccessHandler backs the bearer-token middleware.
func (h Handler) VerifyAccessHandler(ctx context.Context, accessToken string) (string, error) {
	return h.Auth.VerifyAccess(ctx, accessToken)
}

func userResponse(user entities.User) transporthttp.UserResponse {
	return transporthttp.UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
