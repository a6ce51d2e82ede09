package unit

import (
	"context"
	"errors"
	"testing"

	authservice "ballotbox/contexts/identity-access/auth-service"
	autherrors "ballotbox/contexts/identity-access/auth-service/domain/errors"
	authhttp "ballotbox/contexts/identity-access/auth-service/transport/http"
)

func TestRegisterLoginProfile(t *testing.T) {
	module := authservice.NewInMemoryModule("unit-secret", nil)

	registered, err := module.Handler.RegisterHandler(context.Background(), authhttp.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.User.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", registered.User.Email)
	}
	if registered.Tokens.AccessToken == "" || registered.Tokens.RefreshToken == "" {
		t.Fatalf("register must hand back a token pair")
	}

	login, err := module.Handler.LoginHandler(context.Background(), authhttp.LoginRequest{
		Username: "alice",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Tokens.AccessToken == "" || login.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", login.Tokens)
	}

	userID, err := module.Handler.VerifyAccessHandler(context.Background(), login.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access failed: %v", err)
	}
	if userID != registered.User.UserID {
		t.Fatalf("expected user %s, got %s", registered.User.UserID, userID)
	}

	profile, err := module.Handler.ProfileHandler(context.Background(), userID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestRegisterValidation(t *testing.T) {
	module := authservice.NewInMemoryModule("unit-secret", nil)

	cases := []struct {
		name string
		req  authhttp.RegisterRequest
	}{
		{"short password", authhttp.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"}},
		{"missing username", authhttp.RegisterRequest{Email: "bob@example.com", Password: "longenough"}},
		{"bad email", authhttp.RegisterRequest{Username: "bob", Email: "not-an-email", Password: "longenough"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := module.Handler.RegisterHandler(context.Background(), tc.req); !errors.Is(err, autherrors.ErrInvalidCredentialsInput) {
				t.Fatalf("expected ErrInvalidCredentialsInput, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	module := authservice.NewInMemoryModule("unit-secret", nil)

	req := authhttp.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "longenough"}
	if _, err := module.Handler.RegisterHandler(context.Background(), req); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	req.Email = "other@example.com"
	if _, err := module.Handler.RegisterHandler(context.Background(), req); !errors.Is(err, autherrors.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	module := authservice.NewInMemoryModule("unit-secret", nil)

	if _, err := module.Handler.RegisterHandler(context.Background(), authhttp.RegisterRequest{
		Username: "dave", Email: "dave@example.com", Password: "longenough",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := module.Handler.LoginHandler(context.Background(), authhttp.LoginRequest{Username: "dave", Password: "wrongwrong"})
	if !errors.Is(err, autherrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, err = module.Handler.LoginHandler(context.Background(), authhttp.LoginRequest{Username: "ghost", Password: "whatever1"})
	if !errors.Is(err, autherrors.ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestRefreshAndLogoutRevocation(t *testing.T) {
	module := authservice.NewInMemoryModule("unit-secret", nil)

	if _, err := module.Handler.RegisterHandler(context.Background(), authhttp.RegisterRequest{
		Username: "erin", Email: "erin@example.com", Password: "longenough",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := module.Handler.LoginHandler(context.Background(), authhttp.LoginRequest{Username: "erin", Password: "longenough"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := module.Handler.RefreshHandler(context.Background(), authhttp.RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("expected fresh access token")
	}

	_, err = module.Handler.RefreshHandler(context.Background(), authhttp.RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
	if !errors.Is(err, autherrors.ErrTokenRevoked) {
		t.Fatalf("consumed refresh token must be revoked after rotation, got %v", err)
	}

	if err := module.Handler.LogoutHandler(context.Background(), authhttp.LogoutRequest{RefreshToken: refreshed.RefreshToken}); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	_, err = module.Handler.RefreshHandler(context.Background(), authhttp.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	if !errors.Is(err, autherrors.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}

	if _, err := module.Handler.VerifyAccessHandler(context.Background(), login.Tokens.RefreshToken); !errors.Is(err, autherrors.ErrTokenInvalid) {
		t.Fatalf("refresh token must not pass as access token, got %v", err)
	}
}
