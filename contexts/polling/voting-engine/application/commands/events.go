package commands

import (
	"encoding/json"
	"time"

	"ballotbox/contexts/polling/voting-engine/ports"
)

func newVoteEnvelope(
	eventID string,
	eventType string,
	pollID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "ballotbox",
		OccurredAtUTC:  occurredAt.UTC(),
		EntityType:     "poll",
		EntityID:       pollID,
		PayloadVersion: 1,
		Payload:        payload,
	}, nil
}
