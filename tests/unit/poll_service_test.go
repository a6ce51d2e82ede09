package unit

import (
	"context"
	"errors"
	"testing"

	pollservice "ballotbox/contexts/polling/poll-service"
	pollerrors "ballotbox/contexts/polling/poll-service/domain/errors"
	pollhttp "ballotbox/contexts/polling/poll-service/transport/http"
)

func TestCreatePollTrimsAndDefaults(t *testing.T) {
	module := pollservice.NewInMemoryModule(nil, nil)

	resp, err := module.Handler.CreatePollHandler(context.Background(), "creator-1", pollhttp.CreatePollRequest{
		Question: "  Favourite color?  ",
		Choices:  []string{" Red ", "Blue"},
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if resp.Question != "Favourite color?" {
		t.Fatalf("expected trimmed question, got %q", resp.Question)
	}
	if !resp.IsActive {
		t.Fatalf("expected poll active by default")
	}
	if len(resp.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(resp.Choices))
	}
	if resp.Choices[0].Text != "Red" || resp.Choices[1].Text != "Blue" {
		t.Fatalf("expected trimmed choices, got %+v", resp.Choices)
	}
}

func TestCreatePollValidation(t *testing.T) {
	module := pollservice.NewInMemoryModule(nil, nil)

	cases := []struct {
		name string
		req  pollhttp.CreatePollRequest
	}{
		{"empty question", pollhttp.CreatePollRequest{Question: "  ", Choices: []string{"A", "B"}}},
		{"single choice", pollhttp.CreatePollRequest{Question: "Q?", Choices: []string{"A"}}},
		{"blank choices collapse", pollhttp.CreatePollRequest{Question: "Q?", Choices: []string{"A", "  "}}},
		{"duplicate choices", pollhttp.CreatePollRequest{Question: "Q?", Choices: []string{"Red", " Red "}}},
		{"no choices", pollhttp.CreatePollRequest{Question: "Q?"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := module.Handler.CreatePollHandler(context.Background(), "creator-1", tc.req)
			if !errors.Is(err, pollerrors.ErrInvalidPollInput) {
				t.Fatalf("expected ErrInvalidPollInput, got %v", err)
			}
		})
	}
}

func TestUpdatePollOwnerOnly(t *testing.T) {
	module := pollservice.NewInMemoryModule(nil, nil)
	created, err := module.Handler.CreatePollHandler(context.Background(), "creator-1", pollhttp.CreatePollRequest{
		Question: "Q?",
		Choices:  []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}

	question := "Updated?"
	if _, err := module.Handler.UpdatePollHandler(context.Background(), created.PollID, "stranger", pollhttp.UpdatePollRequest{Question: &question}); !errors.Is(err, pollerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}

	updated, err := module.Handler.UpdatePollHandler(context.Background(), created.PollID, "creator-1", pollhttp.UpdatePollRequest{Question: &question})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Question != "Updated?" {
		t.Fatalf("expected updated question, got %q", updated.Question)
	}
}

func TestDeletePollOwnerOnly(t *testing.T) {
	module := pollservice.NewInMemoryModule(nil, nil)
	created, err := module.Handler.CreatePollHandler(context.Background(), "creator-1", pollhttp.CreatePollRequest{
		Question: "Q?",
		Choices:  []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}

	if err := module.Handler.DeletePollHandler(context.Background(), created.PollID, "stranger"); !errors.Is(err, pollerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := module.Handler.DeletePollHandler(context.Background(), created.PollID, "creator-1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := module.Handler.GetPollHandler(context.Background(), created.PollID, "creator-1"); !errors.Is(err, pollerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound after delete, got %v", err)
	}
}

func TestInactivePollVisibility(t *testing.T) {
	module := pollservice.NewInMemoryModule(nil, nil)
	inactive := false
	created, err := module.Handler.CreatePollHandler(context.Background(), "creator-1", pollhttp.CreatePollRequest{
		Question: "Q?",
		IsActive: &inactive,
		Choices:  []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}

	if _, err := module.Handler.GetPollHandler(context.Background(), created.PollID, "stranger"); !errors.Is(err, pollerrors.ErrPollNotFound) {
		t.Fatalf("expected inactive poll hidden, got %v", err)
	}
	if _, err := module.Handler.GetPollHandler(context.Background(), created.PollID, "creator-1"); err != nil {
		t.Fatalf("creator read failed: %v", err)
	}

	list, err := module.Handler.ListPollsHandler(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, item := range list.Items {
		if item.PollID == created.PollID {
			t.Fatalf("inactive poll leaked into stranger listing")
		}
	}
	creatorList, err := module.Handler.ListPollsHandler(context.Background(), "creator-1")
	if err != nil {
		t.Fatalf("creator list failed: %v", err)
	}
	if len(creatorList.Items) != 1 {
		t.Fatalf("creator must see own inactive poll, got %d items", len(creatorList.Items))
	}
}
