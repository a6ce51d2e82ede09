package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/polling/voting-engine/domain/entities"
	domainerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	"ballotbox/contexts/polling/voting-engine/ports"
)

// ResultsUseCase serves the read side of the ledger. All counts are computed
// from committed votes on every call; nothing is cached in mutable counters.
// These reads take no locks and never observe an in-flight admission.
type ResultsUseCase struct {
	Ledger  ports.VoteLedger
	Catalog ports.PollCatalog
}

// PollDetail returns the poll with per-choice tallies, the total vote count,
// and the viewer's voting status. Inactive polls are visible only to their
// creator; everyone else gets not-found.
func (uc ResultsUseCase) PollDetail(ctx context.Context, pollID string, viewerID string) (entities.PollResult, error) {
	poll, err := uc.Catalog.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return entities.PollResult{}, err
	}
	viewer := strings.TrimSpace(viewerID)
	if !poll.IsActive && (viewer == "" || viewer != strings.TrimSpace(poll.CreatedBy)) {
		return entities.PollResult{}, domainerrors.ErrPollNotFound
	}

	choices, err := uc.Catalog.ListChoices(ctx, poll.PollID)
	if err != nil {
		return entities.PollResult{}, err
	}
	votes, err := uc.Ledger.ListVotesByPoll(ctx, poll.PollID)
	if err != nil {
		return entities.PollResult{}, err
	}

	countByChoice := make(map[string]int, len(choices))
	for _, vote := range votes {
		countByChoice[vote.ChoiceID]++
	}

	result := entities.PollResult{
		PollID:      poll.PollID,
		Question:    poll.Question,
		Description: poll.Description,
		IsActive:    poll.IsActive,
		TotalVotes:  len(votes),
		CreatedAt:   poll.CreatedAt,
		UpdatedAt:   poll.UpdatedAt,
	}
	for _, choice := range choices {
		result.Choices = append(result.Choices, entities.ChoiceTally{
			ChoiceID:  choice.ChoiceID,
			Text:      choice.Text,
			VoteCount: countByChoice[choice.ChoiceID],
		})
	}

	if viewer != "" {
		existing, found, err := uc.Ledger.GetVoteByVoter(ctx, poll.PollID, viewer)
		if err != nil {
			return entities.PollResult{}, err
		}
		if found {
			result.UserHasVoted = true
			result.UserChoiceID = existing.ChoiceID
		}
	}
	return result, nil
}

// VoterHistory returns the voter's votes newest first, annotated with the
// poll question and choice text at query time.
func (uc ResultsUseCase) VoterHistory(ctx context.Context, voterID string) ([]entities.VoterHistoryItem, error) {
	voter := strings.TrimSpace(voterID)
	if voter == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	return uc.Ledger.ListVoterHistory(ctx, voter)
}
