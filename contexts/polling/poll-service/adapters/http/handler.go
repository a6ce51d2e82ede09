package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotbox/contexts/polling/poll-service/application/commands"
	"ballotbox/contexts/polling/poll-service/application/queries"
	"ballotbox/contexts/polling/poll-service/domain/entities"
	httptransport "ballotbox/contexts/polling/poll-service/transport/http"
)

type Handler struct {
	Polls   commands.PollUseCase
	Queries queries.PollQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) CreatePollHandler(
	ctx context.Context,
	creatorID string,
	req httptransport.CreatePollRequest,
) (httptransport.PollResponse, error) {
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		Question:    req.Question,
		Description: req.Description,
		IsActive:    req.IsActive,
		CreatorID:   creatorID,
		ChoiceTexts: req.Choices,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) GetPollHandler(ctx context.Context, pollID string, viewerID string) (httptransport.PollResponse, error) {
	poll, err := h.Queries.GetPoll(ctx, pollID, viewerID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) ListPollsHandler(ctx context.Context, viewerID string) (httptransport.PollListResponse, error) {
	summaries, err := h.Queries.ListPolls(ctx, viewerID)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	items := make([]httptransport.PollSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, httptransport.PollSummaryResponse{
			PollID:      summary.PollID,
			Question:    summary.Question,
			Description: summary.Description,
			IsActive:    summary.IsActive,
			TotalVotes:  summary.TotalVotes,
			CreatedAt:   summary.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.PollListResponse{Items: items}, nil
}

func (h Handler) UpdatePollHandler(
	ctx context.Context,
	pollID string,
	actorID string,
	req httptransport.UpdatePollRequest,
) (httptransport.PollResponse, error) {
	poll, err := h.Polls.UpdatePoll(ctx, commands.UpdatePollCommand{
		PollID:      pollID,
		ActorID:     actorID,
		Question:    req.Question,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) DeletePollHandler(ctx context.Context, pollID string, actorID string) error {
	return h.Polls.DeletePoll(ctx, commands.DeletePollCommand{
		PollID:  pollID,
		ActorID: actorID,
	})
}

func pollResponse(poll entities.Poll) httptransport.PollResponse {
	choices := make([]httptransport.ChoiceResponse, 0, len(poll.Choices))
	for _, choice := range poll.Choices {
		choices = append(choices, httptransport.ChoiceResponse{
			ChoiceID:  choice.ChoiceID,
			Text:      choice.Text,
			CreatedAt: choice.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.PollResponse{
		PollID:      poll.PollID,
		Question:    poll.Question,
		Description: poll.Description,
		IsActive:    poll.IsActive,
		CreatedBy:   poll.CreatedBy,
		Choices:     choices,
		CreatedAt:   poll.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   poll.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
