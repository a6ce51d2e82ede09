package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/polling/voting-engine/application"
	"ballotbox/contexts/polling/voting-engine/domain/entities"
	domainerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	"ballotbox/contexts/polling/voting-engine/ports"
)

// CastVoteCommand is the write-model input for vote admission.
type CastVoteCommand struct {
	VoterID  string
	ChoiceID string
}

// CastVoteResult carries the admitted vote, or on ErrAlreadyVoted the
// voter's existing vote so the transport can include the offending choice
// in the rejection payload.
type CastVoteResult struct {
	Vote               entities.Vote
	ExistingChoiceID   string
	ExistingChoiceText string
}

// AdmissionUseCase enforces at-most-one-vote-per-voter-per-poll. Admission
// is serialized per poll inside the ledger transaction; the database unique
// constraint on (voter, poll) is the second line of defense.
type AdmissionUseCase struct {
	Ledger  ports.VoteLedger
	Catalog ports.PollCatalog
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc AdmissionUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	choiceID := strings.TrimSpace(cmd.ChoiceID)
	logger.Info("vote admission started",
		"event", "vote_admission_started",
		"module", "polling/voting-engine",
		"layer", "application",
		"voter_id", voterID,
		"choice_id", choiceID,
	)
	if voterID == "" || choiceID == "" {
		logger.Warn("vote admission validation failed",
			"event", "vote_admission_validation_failed",
			"module", "polling/voting-engine",
			"layer", "application",
			"voter_id", voterID,
			"choice_id", choiceID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	choice, err := uc.Catalog.GetChoice(ctx, choiceID)
	if err != nil {
		return CastVoteResult{}, err
	}
	poll, err := uc.Catalog.GetPoll(ctx, choice.PollID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !poll.IsActive {
		logger.Warn("vote rejected for inactive poll",
			"event", "vote_admission_poll_inactive",
			"module", "polling/voting-engine",
			"layer", "application",
			"voter_id", voterID,
			"poll_id", poll.PollID,
		)
		return CastVoteResult{}, domainerrors.ErrPollInactive
	}

	now := uc.now()
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}

	vote := entities.Vote{
		VoteID:   voteID,
		VoterID:  voterID,
		ChoiceID: choice.ChoiceID,
		PollID:   choice.PollID,
		VotedAt:  now,
	}
	event, err := newVoteEnvelope(eventID, "vote.cast", vote.PollID, now, map[string]any{
		"vote_id":   vote.VoteID,
		"voter_id":  vote.VoterID,
		"choice_id": vote.ChoiceID,
		"poll_id":   vote.PollID,
		"voted_at":  now.Format(time.RFC3339),
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	admitted, err := uc.Ledger.AdmitVote(ctx, vote, event)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			result := CastVoteResult{
				Vote:             admitted,
				ExistingChoiceID: admitted.ChoiceID,
			}
			if existing, lookupErr := uc.Catalog.GetChoice(ctx, admitted.ChoiceID); lookupErr == nil {
				result.ExistingChoiceText = existing.Text
			}
			logger.Warn("vote rejected as duplicate",
				"event", "vote_admission_duplicate",
				"module", "polling/voting-engine",
				"layer", "application",
				"voter_id", voterID,
				"poll_id", poll.PollID,
				"existing_choice_id", result.ExistingChoiceID,
			)
			return result, err
		}
		if errors.Is(err, domainerrors.ErrVoteConflict) {
			logger.Warn("vote admission hit lock contention",
				"event", "vote_admission_conflict",
				"module", "polling/voting-engine",
				"layer", "application",
				"voter_id", voterID,
				"poll_id", poll.PollID,
			)
		}
		return CastVoteResult{}, err
	}

	logger.Info("vote admitted",
		"event", "vote_admitted",
		"module", "polling/voting-engine",
		"layer", "application",
		"vote_id", admitted.VoteID,
		"voter_id", admitted.VoterID,
		"poll_id", admitted.PollID,
		"choice_id", admitted.ChoiceID,
	)
	return CastVoteResult{Vote: admitted}, nil
}

func (uc AdmissionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
