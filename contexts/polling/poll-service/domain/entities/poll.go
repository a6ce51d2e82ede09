package entities

import "time"

type Poll struct {
	PollID      string
	Question    string
	Description string
	IsActive    bool
	CreatedBy   string // empty means anonymous creation
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Choices     []Choice
}

type Choice struct {
	ChoiceID  string
	PollID    string
	Text      string
	CreatedAt time.Time
}

// PollSummary is the list-view shape: no nested choices, but the total
// committed vote count so listings never drift from the ledger.
type PollSummary struct {
	PollID      string
	Question    string
	Description string
	IsActive    bool
	CreatedBy   string
	TotalVotes  int
	CreatedAt   time.Time
}
