package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	votingengine "ballotbox/contexts/polling/voting-engine"
	voteerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	"ballotbox/contexts/polling/voting-engine/ports"
	votehttp "ballotbox/contexts/polling/voting-engine/transport/http"
)

func seedVotingPoll(module votingengine.Module, pollID string, active bool) {
	module.Store.SetPoll(ports.PollProjection{
		PollID:    pollID,
		Question:  "Favourite color?",
		IsActive:  active,
		CreatedBy: "creator-1",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	})
	module.Store.SetChoice(ports.ChoiceProjection{ChoiceID: pollID + "-red", PollID: pollID, Text: "Red"})
	module.Store.SetChoice(ports.ChoiceProjection{ChoiceID: pollID + "-blue", PollID: pollID, Text: "Blue"})
}

func TestCastVoteAndDetail(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)

	result, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-1-red"})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if result.Vote.PollID != "poll-1" || result.Vote.ChoiceID != "poll-1-red" {
		t.Fatalf("unexpected vote: %+v", result.Vote)
	}

	detail, err := module.Handler.PollDetailHandler(context.Background(), "poll-1", "user-1")
	if err != nil {
		t.Fatalf("poll detail failed: %v", err)
	}
	if detail.TotalVotes != 1 {
		t.Fatalf("expected total 1, got %d", detail.TotalVotes)
	}
	if !detail.UserHasVoted || detail.UserChoiceID != "poll-1-red" {
		t.Fatalf("expected viewer vote status, got %+v", detail)
	}
	for _, tally := range detail.Choices {
		switch tally.ChoiceID {
		case "poll-1-red":
			if tally.VoteCount != 1 {
				t.Fatalf("expected red count 1, got %d", tally.VoteCount)
			}
		case "poll-1-blue":
			if tally.VoteCount != 0 {
				t.Fatalf("expected blue count 0, got %d", tally.VoteCount)
			}
		}
	}
}

func TestCastVoteDuplicateReturnsExistingChoice(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-1-red"}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-1-blue"})
	if !errors.Is(err, voteerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if result.ExistingChoiceID != "poll-1-red" {
		t.Fatalf("expected existing choice poll-1-red, got %q", result.ExistingChoiceID)
	}
	if result.ExistingChoiceText != "Red" {
		t.Fatalf("expected existing text Red, got %q", result.ExistingChoiceText)
	}

	detail, err := module.Handler.PollDetailHandler(context.Background(), "poll-1", "")
	if err != nil {
		t.Fatalf("poll detail failed: %v", err)
	}
	if detail.TotalVotes != 1 {
		t.Fatalf("expected total 1 after duplicate, got %d", detail.TotalVotes)
	}
	if detail.UserHasVoted {
		t.Fatalf("anonymous viewer must not report a vote")
	}
}

func TestCastVoteRejectsInactivePoll(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", false)

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-1-red"})
	if !errors.Is(err, voteerrors.ErrPollInactive) {
		t.Fatalf("expected ErrPollInactive, got %v", err)
	}
}

func TestCastVoteUnknownChoice(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "missing"})
	if !errors.Is(err, voteerrors.ErrChoiceNotFound) {
		t.Fatalf("expected ErrChoiceNotFound, got %v", err)
	}
}

func TestInactivePollDetailHiddenFromOthers(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", false)

	if _, err := module.Handler.PollDetailHandler(context.Background(), "poll-1", "stranger"); !errors.Is(err, voteerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound for stranger, got %v", err)
	}
	if _, err := module.Handler.PollDetailHandler(context.Background(), "poll-1", "creator-1"); err != nil {
		t.Fatalf("creator must still read inactive poll: %v", err)
	}
}

func TestVoteHistoryNewestFirst(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)
	seedVotingPoll(module, "poll-2", true)

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-1-red"}); err != nil {
		t.Fatalf("vote on poll-1 failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-2-blue"}); err != nil {
		t.Fatalf("vote on poll-2 failed: %v", err)
	}

	history, err := module.Handler.VoteHistoryHandler(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(history.Items))
	}
	if history.Items[0].PollID != "poll-2" || history.Items[1].PollID != "poll-1" {
		t.Fatalf("expected newest first, got %+v", history.Items)
	}
	if history.Items[0].PollQuestion == "" || history.Items[0].ChoiceText != "Blue" {
		t.Fatalf("expected annotated history, got %+v", history.Items[0])
	}
}
