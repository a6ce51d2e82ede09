package authservice

import (
	"log/slog"
	"time"

	httpadapter "ballotbox/contexts/identity-access/auth-service/adapters/http"
	memoryadapter "ballotbox/contexts/identity-access/auth-service/adapters/memory"
	passwordadapter "ballotbox/contexts/identity-access/auth-service/adapters/password"
	tokenadapter "ballotbox/contexts/identity-access/auth-service/adapters/token"
	"ballotbox/contexts/identity-access/auth-service/application/commands"
	"ballotbox/contexts/identity-access/auth-service/ports"
)

// Module bundles the wired auth entry points handed to the HTTP server.
type Module struct {
	Handler httpadapter.Handler
	Store   *memoryadapter.Store
}

type Dependencies struct {
	Users   ports.UserRepository
	Tokens  ports.TokenService
	Revoked ports.RevokedTokenStore
	Hasher  ports.PasswordHasher
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	auth := commands.AuthUseCase{
		Users:   deps.Users,
		Tokens:  deps.Tokens,
		Revoked: deps.Revoked,
		Hasher:  deps.Hasher,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Auth:   auth,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store with an
// HS256 signer suitable for tests and local runs.
func NewInMemoryModule(secret string, logger *slog.Logger) Module {
	store := memoryadapter.NewStore()
	module := NewModule(Dependencies{
		Users:   store,
		Tokens:  tokenadapter.JWTService{Secret: []byte(secret), AccessTTL: time.Hour, RefreshTTL: 7 * 24 * time.Hour, Clock: store},
		Revoked: store,
		Hasher:  passwordadapter.BcryptHasher{},
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
