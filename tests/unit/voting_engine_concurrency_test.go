package unit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	votingengine "ballotbox/contexts/polling/voting-engine"
	voteerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	votehttp "ballotbox/contexts/polling/voting-engine/transport/http"
)

// Concurrent casts by the same voter must admit exactly one ballot no matter
// how the racers interleave.
func TestConcurrentVotesAdmitExactlyOne(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)

	const racers = 16
	var admitted atomic.Int64
	var rejected atomic.Int64

	var group errgroup.Group
	for i := 0; i < racers; i++ {
		choice := "poll-1-red"
		if i%2 == 1 {
			choice = "poll-1-blue"
		}
		group.Go(func() error {
			_, err := module.Handler.CastVoteHandler(context.Background(), "user-1", votehttp.CastVoteRequest{Choice: choice})
			switch {
			case err == nil:
				admitted.Add(1)
				return nil
			case errors.Is(err, voteerrors.ErrAlreadyVoted):
				rejected.Add(1)
				return nil
			default:
				return err
			}
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}

	if admitted.Load() != 1 {
		t.Fatalf("expected exactly one admission, got %d", admitted.Load())
	}
	if rejected.Load() != racers-1 {
		t.Fatalf("expected %d rejections, got %d", racers-1, rejected.Load())
	}

	detail, err := module.Handler.PollDetailHandler(context.Background(), "poll-1", "")
	if err != nil {
		t.Fatalf("poll detail failed: %v", err)
	}
	if detail.TotalVotes != 1 {
		t.Fatalf("ledger holds %d votes, expected 1", detail.TotalVotes)
	}
}

// Distinct voters are never serialized away: each gets one ballot.
func TestConcurrentVotesDistinctVoters(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil)
	seedVotingPoll(module, "poll-1", true)

	const voters = 12
	var group errgroup.Group
	for i := 0; i < voters; i++ {
		voter := string(rune('a' + i))
		group.Go(func() error {
			_, err := module.Handler.CastVoteHandler(context.Background(), "voter-"+voter, votehttp.CastVoteRequest{Choice: "poll-1-red"})
			return err
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}

	detail, err := module.Handler.PollDetailHandler(context.Background(), "poll-1", "")
	if err != nil {
		t.Fatalf("poll detail failed: %v", err)
	}
	if detail.TotalVotes != voters {
		t.Fatalf("expected %d votes, got %d", voters, detail.TotalVotes)
	}
}
