package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	Choice string `json:"choice"`
}

type VoteResponse struct {
	VoteID   string `json:"id"`
	PollID   string `json:"poll_id"`
	ChoiceID string `json:"choice_id"`
	VotedAt  string `json:"voted_at"`
}

type CastVoteResponse struct {
	Message string       `json:"message"`
	Vote    VoteResponse `json:"vote"`
}

// DuplicateVoteResponse is a 400 body, not an error envelope; it mirrors the
// shape clients already parse for rejected ballots.
type DuplicateVoteResponse struct {
	Error          string `json:"error"`
	ExistingChoice string `json:"existing_choice"`
	ExistingText   string `json:"existing_choice_text,omitempty"`
}

type ChoiceTallyResponse struct {
	ChoiceID  string `json:"id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
}

type PollDetailResponse struct {
	PollID       string                `json:"id"`
	Question     string                `json:"question"`
	Description  string                `json:"description,omitempty"`
	IsActive     bool                  `json:"is_active"`
	Choices      []ChoiceTallyResponse `json:"choices"`
	TotalVotes   int                   `json:"total_votes"`
	UserHasVoted bool                  `json:"user_has_voted"`
	UserChoiceID string                `json:"user_vote_choice_id,omitempty"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}

type VoteHistoryItemResponse struct {
	VoteID       string `json:"id"`
	PollID       string `json:"poll_id"`
	PollQuestion string `json:"poll_question"`
	ChoiceID     string `json:"choice_id"`
	ChoiceText   string `json:"choice_text"`
	VotedAt      string `json:"voted_at"`
}

type VoteHistoryResponse struct {
	Items []VoteHistoryItemResponse `json:"items"`
}
