package ports

import (
	"context"
	"time"

	"ballotbox/contexts/polling/voting-engine/domain/entities"
	contractsv1 "ballotbox/contracts/gen/events/v1"
)

// PollProjection is the slice of poll state the voting engine needs: the
// active flag gates admission, the creator gates inactive-poll visibility.
type PollProjection struct {
	PollID      string
	Question    string
	Description string
	IsActive    bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ChoiceProjection struct {
	ChoiceID string
	PollID   string
	Text     string
}

// PollCatalog reads poll-service records the ledger references.
type PollCatalog interface {
	GetPoll(ctx context.Context, pollID string) (PollProjection, error)
	GetChoice(ctx context.Context, choiceID string) (ChoiceProjection, error)
	ListChoices(ctx context.Context, pollID string) ([]ChoiceProjection, error)
}

// VoteLedger is the durable, uniqueness-constrained vote record.
type VoteLedger interface {
	// AdmitVote inserts the vote and the audit event in one transaction
	// while holding an exclusive lock on the target poll row. When the
	// (voter, poll) pair already holds a vote it returns that existing
	// vote together with ErrAlreadyVoted.
	AdmitVote(ctx context.Context, vote entities.Vote, event EventEnvelope) (entities.Vote, error)
	GetVoteByVoter(ctx context.Context, pollID string, voterID string) (entities.Vote, bool, error)
	ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error)
	ListVoterHistory(ctx context.Context, voterID string) ([]entities.VoterHistoryItem, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
