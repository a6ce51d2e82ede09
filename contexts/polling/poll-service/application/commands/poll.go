package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/polling/poll-service/application"
	"ballotbox/contexts/polling/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/polling/poll-service/domain/errors"
	"ballotbox/contexts/polling/poll-service/ports"
)

// CreatePollCommand is the write-model input for atomic poll+choices creation.
type CreatePollCommand struct {
	Question    string
	Description string
	IsActive    *bool
	CreatorID   string // empty means anonymous creation
	ChoiceTexts []string
}

// UpdatePollCommand patches an existing poll. Nil fields are left untouched.
type UpdatePollCommand struct {
	PollID      string
	ActorID     string
	Question    *string
	Description *string
	IsActive    *bool
}

type DeletePollCommand struct {
	PollID  string
	ActorID string
}

// PollUseCase orchestrates poll mutations: creation validation (at least two
// unique non-empty choices after trimming) and creator-only lifecycle changes.
type PollUseCase struct {
	Polls  ports.PollRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)

	question := strings.TrimSpace(cmd.Question)
	if question == "" {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "polling/poll-service",
			"layer", "application",
			"reason", "empty_question",
		)
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	texts, err := normalizeChoiceTexts(cmd.ChoiceTexts)
	if err != nil {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "polling/poll-service",
			"layer", "application",
			"reason", "invalid_choices",
			"choice_count", len(cmd.ChoiceTexts),
		)
		return entities.Poll{}, err
	}

	now := uc.now()
	pollID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}

	poll := entities.Poll{
		PollID:      pollID,
		Question:    question,
		Description: strings.TrimSpace(cmd.Description),
		IsActive:    true,
		CreatedBy:   strings.TrimSpace(cmd.CreatorID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cmd.IsActive != nil {
		poll.IsActive = *cmd.IsActive
	}
	for _, text := range texts {
		choiceID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Poll{}, err
		}
		poll.Choices = append(poll.Choices, entities.Choice{
			ChoiceID:  choiceID,
			PollID:    pollID,
			Text:      text,
			CreatedAt: now,
		})
	}

	created, err := uc.Polls.CreatePollWithChoices(ctx, poll)
	if err != nil {
		return entities.Poll{}, err
	}
	logger.Info("poll created",
		"event", "poll_created",
		"module", "polling/poll-service",
		"layer", "application",
		"poll_id", created.PollID,
		"creator_id", created.CreatedBy,
		"choice_count", len(created.Choices),
	)
	return created, nil
}

func (uc PollUseCase) UpdatePoll(ctx context.Context, cmd UpdatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.PollID) == "" {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(cmd.PollID))
	if err != nil {
		return entities.Poll{}, err
	}
	if !isOwner(poll, cmd.ActorID) {
		logger.Warn("poll update forbidden",
			"event", "poll_update_forbidden",
			"module", "polling/poll-service",
			"layer", "application",
			"poll_id", poll.PollID,
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Poll{}, domainerrors.ErrForbidden
	}

	if cmd.Question != nil {
		question := strings.TrimSpace(*cmd.Question)
		if question == "" {
			return entities.Poll{}, domainerrors.ErrInvalidPollInput
		}
		poll.Question = question
	}
	if cmd.Description != nil {
		poll.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.IsActive != nil {
		poll.IsActive = *cmd.IsActive
	}
	poll.UpdatedAt = uc.now()

	if err := uc.Polls.UpdatePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}
	logger.Info("poll updated",
		"event", "poll_updated",
		"module", "polling/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"actor_id", strings.TrimSpace(cmd.ActorID),
		"is_active", poll.IsActive,
	)
	return poll, nil
}

func (uc PollUseCase) DeletePoll(ctx context.Context, cmd DeletePollCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.PollID) == "" {
		return domainerrors.ErrInvalidPollInput
	}

	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(cmd.PollID))
	if err != nil {
		return err
	}
	if !isOwner(poll, cmd.ActorID) {
		logger.Warn("poll delete forbidden",
			"event", "poll_delete_forbidden",
			"module", "polling/poll-service",
			"layer", "application",
			"poll_id", poll.PollID,
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return domainerrors.ErrForbidden
	}

	if err := uc.Polls.DeletePoll(ctx, poll.PollID); err != nil {
		return err
	}
	logger.Info("poll deleted",
		"event", "poll_deleted",
		"module", "polling/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"actor_id", strings.TrimSpace(cmd.ActorID),
	)
	return nil
}

func (uc PollUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func isOwner(poll entities.Poll, actorID string) bool {
	actor := strings.TrimSpace(actorID)
	return actor != "" && actor == strings.TrimSpace(poll.CreatedBy)
}

// normalizeChoiceTexts trims whitespace, drops empties, and requires at least
// two mutually unique texts. "Red" and " Red " count as the same choice.
func normalizeChoiceTexts(raw []string) ([]string, error) {
	texts := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		text := strings.TrimSpace(item)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			return nil, domainerrors.ErrInvalidPollInput
		}
		seen[text] = struct{}{}
		texts = append(texts, text)
	}
	if len(texts) < 2 {
		return nil, domainerrors.ErrInvalidPollInput
	}
	return texts, nil
}
