package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	voteadapter "ballotbox/contexts/polling/voting-engine/adapters/http"
	voteerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	votehttp "ballotbox/contexts/polling/voting-engine/transport/http"
)

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req votehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	result, err := s.votes.Handler.CastVoteHandler(r.Context(), voterID, req)
	if err != nil {
		// A duplicate is a client error with a structured body, not
		// an opaque failure; the existing choice is echoed back.
		if errors.Is(err, voteerrors.ErrAlreadyVoted) {
			writeJSON(w, http.StatusBadRequest, votehttp.DuplicateVoteResponse{
				Error:          "already voted",
				ExistingChoice: result.ExistingChoiceID,
				ExistingText:   result.ExistingChoiceText,
			})
			return
		}
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, votehttp.CastVoteResponse{
		Message: "vote recorded",
		Vote:    voteadapter.VoteResponseFrom(result.Vote),
	})
}

func (s *Server) handleVoteHistory(w http.ResponseWriter, r *http.Request) {
	voterID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.votes.Handler.VoteHistoryHandler(r.Context(), voterID)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
