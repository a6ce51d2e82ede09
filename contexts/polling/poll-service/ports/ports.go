package ports

import (
	"context"
	"time"

	"ballotbox/contexts/polling/poll-service/domain/entities"
)

// PollFilter scopes listing: active polls for everyone, plus the viewer's
// own polls (including inactive ones) when ViewerID is set.
type PollFilter struct {
	ViewerID string
}

type PollRepository interface {
	// CreatePollWithChoices persists the poll and all its choices in one
	// transaction; either everything commits or nothing does.
	CreatePollWithChoices(ctx context.Context, poll entities.Poll) (entities.Poll, error)
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	ListPolls(ctx context.Context, filter PollFilter) ([]entities.PollSummary, error)
	UpdatePoll(ctx context.Context, poll entities.Poll) error
	DeletePoll(ctx context.Context, pollID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
