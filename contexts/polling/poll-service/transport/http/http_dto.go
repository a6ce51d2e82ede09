package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Question    string   `json:"question"`
	Description string   `json:"description,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	Choices     []string `json:"choices"`
}

type UpdatePollRequest struct {
	Question    *string `json:"question,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ChoiceResponse struct {
	ChoiceID  string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type PollResponse struct {
	PollID      string           `json:"id"`
	Question    string           `json:"question"`
	Description string           `json:"description,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedBy   string           `json:"created_by,omitempty"`
	Choices     []ChoiceResponse `json:"choices"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type PollSummaryResponse struct {
	PollID      string `json:"id"`
	Question    string `json:"question"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	TotalVotes  int    `json:"total_votes"`
	CreatedAt   string `json:"created_at"`
}

type PollListResponse struct {
	Items []PollSummaryResponse `json:"items"`
}
