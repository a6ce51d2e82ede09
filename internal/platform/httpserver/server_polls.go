package httpserver

import (
	"encoding/json"
	"net/http"

	pollhttp "ballotbox/contexts/polling/poll-service/transport/http"
)

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	viewerID, err := s.resolveUser(r)
	if err != nil {
		writeAuthError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
		return
	}
	resp, err := s.polls.Handler.ListPollsHandler(r.Context(), viewerID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), creatorID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleGetPoll returns the poll together with its tallies and the viewer's
// own voting status, served by the voting engine read side.
func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	viewerID, err := s.resolveUser(r)
	if err != nil {
		writeAuthError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
		return
	}
	pollID := r.PathValue("poll_id")
	resp, err := s.votes.Handler.PollDetailHandler(r.Context(), pollID, viewerID)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePoll(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req pollhttp.UpdatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	pollID := r.PathValue("poll_id")
	resp, err := s.polls.Handler.UpdatePollHandler(r.Context(), pollID, actorID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	pollID := r.PathValue("poll_id")
	if err := s.polls.Handler.DeletePollHandler(r.Context(), pollID, actorID); err != nil {
		writePollDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
