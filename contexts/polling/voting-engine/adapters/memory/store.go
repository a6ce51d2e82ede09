package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/polling/voting-engine/domain/entities"
	domainerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	"ballotbox/contexts/polling/voting-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store backs tests and local runs. The mutex serializes admission the way
// the poll row lock does in Postgres.
type Store struct {
	mu      sync.Mutex
	polls   map[string]ports.PollProjection
	choices map[string]ports.ChoiceProjection
	votes   map[string]entities.Vote
	outbox  []outboxRecord
}

func NewStore() *Store {
	return &Store{
		polls:   make(map[string]ports.PollProjection),
		choices: make(map[string]ports.ChoiceProjection),
		votes:   make(map[string]entities.Vote),
	}
}

func (s *Store) SetPoll(poll ports.PollProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.PollID] = poll
}

func (s *Store) SetChoice(choice ports.ChoiceProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices[choice.ChoiceID] = choice
}

func (s *Store) AdmitVote(_ context.Context, vote entities.Vote, event ports.EventEnvelope) (entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[vote.PollID]; !ok {
		return entities.Vote{}, domainerrors.ErrPollNotFound
	}
	for _, existing := range s.votes {
		if existing.PollID == vote.PollID && existing.VoterID == vote.VoterID {
			return existing, domainerrors.ErrAlreadyVoted
		}
	}

	stored := vote
	if strings.TrimSpace(stored.VoteID) == "" {
		stored.VoteID = uuid.NewString()
	}
	if stored.VotedAt.IsZero() {
		stored.VotedAt = time.Now().UTC()
	}
	s.votes[stored.VoteID] = stored

	payload, err := json.Marshal(event)
	if err != nil {
		return entities.Vote{}, err
	}
	outboxID := event.EventID
	if strings.TrimSpace(outboxID) == "" {
		outboxID = uuid.NewString()
	}
	s.outbox = append(s.outbox, outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  outboxID,
			EventType: event.EventType,
			Payload:   payload,
			CreatedAt: stored.VotedAt,
		},
	})
	return stored, nil
}

func (s *Store) GetVoteByVoter(_ context.Context, pollID string, voterID string) (entities.Vote, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vote := range s.votes {
		if vote.PollID == pollID && vote.VoterID == voterID {
			return vote, true, nil
		}
	}
	return entities.Vote{}, false, nil
}

func (s *Store) ListVotesByPoll(_ context.Context, pollID string) ([]entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.PollID == pollID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VotedAt.Before(items[j].VotedAt)
	})
	return items, nil
}

func (s *Store) ListVoterHistory(_ context.Context, voterID string) ([]entities.VoterHistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.VoterHistoryItem, 0)
	for _, vote := range s.votes {
		if vote.VoterID != voterID {
			continue
		}
		item := entities.VoterHistoryItem{
			VoteID:   vote.VoteID,
			PollID:   vote.PollID,
			ChoiceID: vote.ChoiceID,
			VotedAt:  vote.VotedAt,
		}
		if poll, ok := s.polls[vote.PollID]; ok {
			item.PollQuestion = poll.Question
		}
		if choice, ok := s.choices[vote.ChoiceID]; ok {
			item.ChoiceText = choice.Text
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VotedAt.After(items[j].VotedAt)
	})
	return items, nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (ports.PollProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return ports.PollProjection{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (s *Store) GetChoice(_ context.Context, choiceID string) (ports.ChoiceProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	choice, ok := s.choices[strings.TrimSpace(choiceID)]
	if !ok {
		return ports.ChoiceProjection{}, domainerrors.ErrChoiceNotFound
	}
	return choice, nil
}

func (s *Store) ListChoices(_ context.Context, pollID string) ([]ports.ChoiceProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.ChoiceProjection, 0)
	for _, choice := range s.choices {
		if choice.PollID == pollID {
			items = append(items, choice)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ChoiceID < items[j].ChoiceID
	})
	return items, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return domainerrors.ErrVoteNotFound
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoteLedger = (*Store)(nil)
var _ ports.PollCatalog = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
