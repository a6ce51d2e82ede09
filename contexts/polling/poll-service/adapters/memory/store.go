package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/polling/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/polling/poll-service/domain/errors"
	"ballotbox/contexts/polling/poll-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	polls      map[string]entities.Poll
	voteCounts map[string]int
}

func NewStore(seed []entities.Poll) *Store {
	polls := make(map[string]entities.Poll, len(seed))
	for _, poll := range seed {
		polls[poll.PollID] = poll
	}
	return &Store{
		polls:      polls,
		voteCounts: make(map[string]int),
	}
}

// SetTotalVotes seeds the ledger-count projection for list reads. In the
// composed process the count comes from the votes table; tests set it here.
func (s *Store) SetTotalVotes(pollID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteCounts[strings.TrimSpace(pollID)] = total
}

func (s *Store) CreatePollWithChoices(_ context.Context, poll entities.Poll) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := poll
	stored.Choices = append([]entities.Choice(nil), poll.Choices...)
	s.polls[strings.TrimSpace(poll.PollID)] = stored
	return stored, nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	poll.Choices = append([]entities.Choice(nil), poll.Choices...)
	return poll, nil
}

func (s *Store) ListPolls(_ context.Context, filter ports.PollFilter) ([]entities.PollSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewer := strings.TrimSpace(filter.ViewerID)
	items := make([]entities.PollSummary, 0, len(s.polls))
	for _, poll := range s.polls {
		if !poll.IsActive && (viewer == "" || viewer != strings.TrimSpace(poll.CreatedBy)) {
			continue
		}
		items = append(items, entities.PollSummary{
			PollID:      poll.PollID,
			Question:    poll.Question,
			Description: poll.Description,
			IsActive:    poll.IsActive,
			CreatedBy:   poll.CreatedBy,
			TotalVotes:  s.voteCounts[poll.PollID],
			CreatedAt:   poll.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PollID > items[j].PollID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpdatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(poll.PollID)
	existing, ok := s.polls[id]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	existing.Question = poll.Question
	existing.Description = poll.Description
	existing.IsActive = poll.IsActive
	existing.UpdatedAt = poll.UpdatedAt
	s.polls[id] = existing
	return nil
}

func (s *Store) DeletePoll(_ context.Context, pollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(pollID)
	if _, ok := s.polls[id]; !ok {
		return domainerrors.ErrPollNotFound
	}
	delete(s.polls, id)
	delete(s.voteCounts, id)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.PollRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
