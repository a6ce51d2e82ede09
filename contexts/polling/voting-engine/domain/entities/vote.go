package entities

import "time"

// Vote is an append-only ledger fact: one voter's immutable selection of one
// choice within one poll. PollID is denormalized from the choice at creation
// and always equals the choice's owning poll.
type Vote struct {
	VoteID   string
	VoterID  string
	ChoiceID string
	PollID   string
	VotedAt  time.Time
}

// ChoiceTally is a choice with its committed vote count, always computed from
// the ledger at read time so it can never drift.
type ChoiceTally struct {
	ChoiceID  string
	Text      string
	VoteCount int
}

// PollResult is the read-model for poll detail: tallies plus the viewer's
// voting status.
type PollResult struct {
	PollID       string
	Question     string
	Description  string
	IsActive     bool
	Choices      []ChoiceTally
	TotalVotes   int
	UserHasVoted bool
	UserChoiceID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VoterHistoryItem is one ledger entry annotated for display with the poll
// question and choice text at query time.
type VoterHistoryItem struct {
	VoteID       string
	PollID       string
	PollQuestion string
	ChoiceID     string
	ChoiceText   string
	VotedAt      time.Time
}
