package unit

import (
	"context"
	"sync"
	"testing"

	votingengine "ballotbox/contexts/polling/voting-engine"
	"ballotbox/contexts/polling/voting-engine/application/workers"
	"ballotbox/contexts/polling/voting-engine/ports"
	votehttp "ballotbox/contexts/polling/voting-engine/transport/http"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []ports.EventEnvelope
	topics []string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestOutboxRelayPublishesOnce(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: "poll-1-red"}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	publisher := &capturePublisher{}
	relay := workers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
		BatchSize: 10,
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	if publisher.topics[0] != "vote.cast" {
		t.Fatalf("expected topic vote.cast, got %q", publisher.topics[0])
	}
	event := publisher.events[0]
	if event.EntityType != "poll" || event.EntityID != "poll-1" {
		t.Fatalf("unexpected envelope: %+v", event)
	}

	// A second cycle finds nothing pending.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected no re-publish, got %d events", len(publisher.events))
	}
}
