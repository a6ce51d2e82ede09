package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/polling/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/polling/poll-service/domain/errors"
	"ballotbox/contexts/polling/poll-service/ports"
)

type PollQueryUseCase struct {
	Polls ports.PollRepository
}

// GetPoll returns the poll with its choices. Inactive polls are visible only
// to their creator; everyone else gets not-found so existence is not leaked.
func (uc PollQueryUseCase) GetPoll(ctx context.Context, pollID string, viewerID string) (entities.Poll, error) {
	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return entities.Poll{}, err
	}
	if !poll.IsActive && !isOwner(poll, viewerID) {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

// ListPolls returns active polls, plus the viewer's own inactive polls when
// authenticated, newest first.
func (uc PollQueryUseCase) ListPolls(ctx context.Context, viewerID string) ([]entities.PollSummary, error) {
	return uc.Polls.ListPolls(ctx, ports.PollFilter{ViewerID: strings.TrimSpace(viewerID)})
}

func isOwner(poll entities.Poll, viewerID string) bool {
	viewer := strings.TrimSpace(viewerID)
	return viewer != "" && viewer == strings.TrimSpace(poll.CreatedBy)
}
