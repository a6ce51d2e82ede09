package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authservice "ballotbox/contexts/identity-access/auth-service"
	autherrors "ballotbox/contexts/identity-access/auth-service/domain/errors"
	authhttp "ballotbox/contexts/identity-access/auth-service/transport/http"
	pollservice "ballotbox/contexts/polling/poll-service"
	pollerrors "ballotbox/contexts/polling/poll-service/domain/errors"
	pollhttp "ballotbox/contexts/polling/poll-service/transport/http"
	votingengine "ballotbox/contexts/polling/voting-engine"
	voteerrors "ballotbox/contexts/polling/voting-engine/domain/errors"

	_ "ballotbox/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
	addr    string
	polls   pollservice.Module
	votes   votingengine.Module
	auth    authservice.Module
	limiter *rateLimiter
}

type Options struct {
	Addr               string
	RateLimitPerMinute int
	EnableRateLimiter  bool
	EnableAuditLog     bool
}

func New(
	polls pollservice.Module,
	votes votingengine.Module,
	auth authservice.Module,
	logger *slog.Logger,
	opts Options,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   opts.Addr,
		polls:  polls,
		votes:  votes,
		auth:   auth,
	}
	if opts.EnableRateLimiter {
		s.limiter = newRateLimiter(opts.RateLimitPerMinute)
	}
	s.registerRoutes()

	var handler http.Handler = s.mux
	handler = s.rateLimitMiddleware(handler)
	if opts.EnableAuditLog {
		handler = s.auditLogMiddleware(handler)
	}
	handler = securityHeadersMiddleware(handler)
	s.handler = handler
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.handler)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /api/auth/profile", s.handleProfile)

	s.mux.HandleFunc("GET /api/polls", s.handleListPolls)
	s.mux.HandleFunc("POST /api/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("PUT /api/polls/{poll_id}", s.handleUpdatePoll)
	s.mux.HandleFunc("PATCH /api/polls/{poll_id}", s.handleUpdatePoll)
	s.mux.HandleFunc("DELETE /api/polls/{poll_id}", s.handleDeletePoll)

	s.mux.HandleFunc("POST /api/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/votes/history", s.handleVoteHistory)
}

// bearerToken extracts the raw token from the Authorization header, empty
// when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolveUser verifies the bearer token when present. The empty string means
// an anonymous request; an error means a token was sent but did not verify.
func (s *Server) resolveUser(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", nil
	}
	return s.auth.Handler.VerifyAccessHandler(r.Context(), token)
}

// requireUser rejects the request with 401 unless a valid bearer token is
// present.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := bearerToken(r)
	if token == "" {
		writeAuthError(w, http.StatusUnauthorized, "missing_token", "Authorization bearer token is required")
		return "", false
	}
	userID, err := s.auth.Handler.VerifyAccessHandler(r.Context(), token)
	if err != nil {
		writeAuthError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
		return "", false
	}
	return userID, true
}

func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pollerrors.ErrPollNotFound):
		writePollError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidPollInput):
		writePollError(w, http.StatusBadRequest, "invalid_poll_input", err.Error())
	case errors.Is(err, pollerrors.ErrForbidden):
		writePollError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrPollNotFound):
		writePollError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrChoiceNotFound):
		writePollError(w, http.StatusNotFound, "choice_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrVoteNotFound):
		writePollError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writePollError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	case errors.Is(err, voteerrors.ErrPollInactive):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "poll is not active"})
	case errors.Is(err, voteerrors.ErrVoteConflict):
		writePollError(w, http.StatusConflict, "vote_conflict", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, autherrors.ErrInvalidCredentialsInput):
		writeAuthError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, autherrors.ErrUsernameTaken),
		errors.Is(err, autherrors.ErrEmailTaken):
		writeAuthError(w, http.StatusBadRequest, "already_registered", err.Error())
	case errors.Is(err, autherrors.ErrInvalidCredentials):
		writeAuthError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, autherrors.ErrTokenInvalid),
		errors.Is(err, autherrors.ErrTokenRevoked):
		writeAuthError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, autherrors.ErrUserNotFound):
		writeAuthError(w, http.StatusNotFound, "user_not_found", err.Error())
	default:
		writeAuthError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return host
}
