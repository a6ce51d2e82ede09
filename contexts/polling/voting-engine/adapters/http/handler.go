// Package httpadapter translates transport DTOs into voting use case calls.
package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotbox/contexts/polling/voting-engine/application/commands"
	"ballotbox/contexts/polling/voting-engine/application/queries"
	"ballotbox/contexts/polling/voting-engine/domain/entities"
	transporthttp "ballotbox/contexts/polling/voting-engine/transport/http"
)

type Handler struct {
	Admission commands.AdmissionUseCase
	Results   queries.ResultsUseCase
	Logger    *slog.Logger
}

// CastVoteHandler admits a ballot for the authenticated voter. On a
// duplicate it returns the existing vote's choice so the transport can
// build the rejection body; err still carries ErrAlreadyVoted.
func (h Handler) CastVoteHandler(ctx context.Context, voterID string, req transporthttp.CastVoteRequest) (commands.CastVoteResult, error) {
	return h.Admission.CastVote(ctx, commands.CastVoteCommand{
		VoterID:  voterID,
		ChoiceID: req.Choice,
	})
}

func (h Handler) PollDetailHandler(ctx context.Context, pollID string, viewerID string) (transporthttp.PollDetailResponse, error) {
	result, err := h.Results.PollDetail(ctx, pollID, viewerID)
	if err != nil {
		return transporthttp.PollDetailResponse{}, err
	}
	return pollDetailResponse(result), nil
}

func (h Handler) VoteHistoryHandler(ctx context.Context, voterID string) (transporthttp.VoteHistoryResponse, error) {
	items, err := h.Results.VoterHistory(ctx, voterID)
	if err != nil {
		return transporthttp.VoteHistoryResponse{}, err
	}
	resp := transporthttp.VoteHistoryResponse{Items: make([]transporthttp.VoteHistoryItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, transporthttp.VoteHistoryItemResponse{
			VoteID:       item.VoteID,
			PollID:       item.PollID,
			PollQuestion: item.PollQuestion,
			ChoiceID:     item.ChoiceID,
			ChoiceText:   item.ChoiceText,
			VotedAt:      item.VotedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func VoteResponseFrom(vote entities.Vote) transporthttp.VoteResponse {
	return transporthttp.VoteResponse{
		VoteID:   vote.VoteID,
		PollID:   vote.PollID,
		ChoiceID: vote.ChoiceID,
		VotedAt:  vote.VotedAt.UTC().Format(time.RFC3339),
	}
}

func pollDetailResponse(result entities.PollResult) transporthttp.PollDetailResponse {
	resp := transporthttp.PollDetailResponse{
		PollID:       result.PollID,
		Question:     result.Question,
		Description:  result.Description,
		IsActive:     result.IsActive,
		Choices:      make([]transporthttp.ChoiceTallyResponse, 0, len(result.Choices)),
		TotalVotes:   result.TotalVotes,
		UserHasVoted: result.UserHasVoted,
		UserChoiceID: result.UserChoiceID,
		CreatedAt:    result.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    result.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, tally := range result.Choices {
		resp.Choices = append(resp.Choices, transporthttp.ChoiceTallyResponse{
			ChoiceID:  tally.ChoiceID,
			Text:      tally.Text,
			VoteCount: tally.VoteCount,
		})
	}
	return resp
}
