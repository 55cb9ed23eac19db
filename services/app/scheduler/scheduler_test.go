package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/growthic-inc/growthic-reddit/common/reddit"
	"github.com/growthic-inc/growthic-reddit/services/app/poster"
	"github.com/sony/sonyflake/v2"
)

type countingCommenter struct {
	mu    sync.Mutex
	calls []*poster.CommentInput
	err   error
}

func (c *countingCommenter) Comment(ctx context.Context, in *poster.CommentInput) (*poster.CommentOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, in)
	if c.err != nil {
		return nil, c.err
	}
	return &poster.CommentOutput{ID: "cmt1"}, nil
}

func (c *countingCommenter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

const targetURL = "https://www.reddit.com/r/golang/comments/abc123/some_title/"

func newTestScheduler(t *testing.T, commenter Commenter, tick time.Duration) *Scheduler {
	t.Helper()

	flake, err := sonyflake.New(sonyflake.Settings{})
	if err != nil {
		t.Fatalf("sonyflake: %v", err)
	}

	s := New(commenter, flake, tick)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSchedule_EmptyText(t *testing.T) {
	s := newTestScheduler(t, &countingCommenter{}, time.Minute)

	_, err := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL,
		Ordinal:   1,
		FireAt:    time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("got %v, want ErrEmptyComment", err)
	}
}

func TestSchedule_InvalidTargetURL(t *testing.T) {
	s := newTestScheduler(t, &countingCommenter{}, time.Minute)

	_, err := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: "https://www.reddit.com/r/golang/",
		Text:      "hello",
		Ordinal:   1,
		FireAt:    time.Now().Add(time.Hour),
	})
	if !errors.Is(err, reddit.ErrInvalidTargetURL) {
		t.Fatalf("got %v, want ErrInvalidTargetURL", err)
	}
}

func TestSchedule_FiresExactlyOnce(t *testing.T) {
	commenter := &countingCommenter{}
	s := newTestScheduler(t, commenter, 10*time.Millisecond)

	job, err := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL,
		Text:      "deferred hello",
		Ordinal:   2,
		FireAt:    time.Now().Add(-time.Second),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if job.Status != StatusPending {
		t.Errorf("fresh job status = %q, want pending", job.Status)
	}

	waitFor(t, time.Second, func() bool { return commenter.count() == 1 })

	// Several more ticks must not re-fire the removed job.
	time.Sleep(50 * time.Millisecond)
	if got := commenter.count(); got != 1 {
		t.Fatalf("comment fired %d times, want exactly 1", got)
	}

	call := commenter.calls[0]
	if call.SubmissionID != "abc123" {
		t.Errorf("SubmissionID = %q, want abc123", call.SubmissionID)
	}
	if call.Text != "deferred hello" {
		t.Errorf("Text = %q", call.Text)
	}
	if call.Ordinal != 2 {
		t.Errorf("Ordinal = %d, want 2", call.Ordinal)
	}

	if pending := s.ListPending(); len(pending) != 0 {
		t.Errorf("fired job still listed: %+v", pending)
	}
}

func TestSchedule_FutureJobWaits(t *testing.T) {
	commenter := &countingCommenter{}
	s := newTestScheduler(t, commenter, 10*time.Millisecond)

	job, err := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL,
		Text:      "not yet",
		Ordinal:   1,
		FireAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if commenter.count() != 0 {
		t.Fatal("job fired before its fire time")
	}

	pending := s.ListPending()
	if len(pending) != 1 || pending[0].ID != job.ID {
		t.Fatalf("pending = %+v, want the scheduled job", pending)
	}
}

func TestCancel(t *testing.T) {
	commenter := &countingCommenter{}
	s := newTestScheduler(t, commenter, 10*time.Millisecond)

	job, err := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL,
		Text:      "cancel me",
		Ordinal:   1,
		FireAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if !s.Cancel(job.ID) {
		t.Fatal("Cancel returned false for a pending job")
	}
	if s.Cancel(job.ID) {
		t.Fatal("second Cancel returned true")
	}
	if pending := s.ListPending(); len(pending) != 0 {
		t.Errorf("cancelled job still listed: %+v", pending)
	}

	time.Sleep(50 * time.Millisecond)
	if commenter.count() != 0 {
		t.Error("cancelled job fired anyway")
	}
}

func TestCancel_UnknownID(t *testing.T) {
	s := newTestScheduler(t, &countingCommenter{}, time.Minute)
	if s.Cancel(999) {
		t.Fatal("Cancel of unknown id returned true")
	}
}

func TestCancel_RaceWithFiring(t *testing.T) {
	commenter := &countingCommenter{}
	s := newTestScheduler(t, commenter, time.Millisecond)

	var fired, cancelled atomic.Int64

	for i := 0; i < 50; i++ {
		job, err := s.Schedule(context.Background(), &ScheduleInput{
			TargetURL: targetURL,
			Text:      "race",
			Ordinal:   1,
			FireAt:    time.Now(),
		})
		if err != nil {
			t.Fatalf("Schedule: %v", err)
		}

		if s.Cancel(job.ID) {
			cancelled.Add(1)
		}
	}

	waitFor(t, 2*time.Second, func() bool {
		fired.Store(int64(commenter.count()))
		return fired.Load()+cancelled.Load() == 50
	})

	// Every job either fired exactly once or was cancelled, never both.
	if fired.Load()+cancelled.Load() != 50 {
		t.Fatalf("fired %d + cancelled %d != 50", fired.Load(), cancelled.Load())
	}
	if pending := s.ListPending(); len(pending) != 0 {
		t.Errorf("dangling entries after race: %+v", pending)
	}
}

func TestExecute_FailureStillCompletes(t *testing.T) {
	commenter := &countingCommenter{err: errors.New("remote says no")}
	s := newTestScheduler(t, commenter, 10*time.Millisecond)

	_, err := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL,
		Text:      "will fail",
		Ordinal:   1,
		FireAt:    time.Now().Add(-time.Second),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	waitFor(t, time.Second, func() bool { return commenter.count() == 1 })

	// The failed job is done, not retried and not resurrected.
	time.Sleep(50 * time.Millisecond)
	if commenter.count() != 1 {
		t.Fatal("failed job was retried")
	}
	if pending := s.ListPending(); len(pending) != 0 {
		t.Errorf("failed job still pending: %+v", pending)
	}
}

func TestListPending_SortedSnapshots(t *testing.T) {
	s := newTestScheduler(t, &countingCommenter{}, time.Minute)

	later, _ := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL, Text: "later", Ordinal: 1, FireAt: time.Now().Add(2 * time.Hour),
	})
	sooner, _ := s.Schedule(context.Background(), &ScheduleInput{
		TargetURL: targetURL, Text: "sooner", Ordinal: 1, FireAt: time.Now().Add(time.Hour),
	})

	pending := s.ListPending()
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].ID != sooner.ID || pending[1].ID != later.ID {
		t.Errorf("pending not sorted by fire time: %+v", pending)
	}

	// Mutating the snapshot must not leak into the live set.
	pending[0].Text = "mutated"
	if s.ListPending()[0].Text != "sooner" {
		t.Error("snapshot mutation reached the live job set")
	}
}

func TestJobIDsNeverReused(t *testing.T) {
	s := newTestScheduler(t, &countingCommenter{}, time.Minute)

	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		job, err := s.Schedule(context.Background(), &ScheduleInput{
			TargetURL: targetURL, Text: "x", Ordinal: 1, FireAt: time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("Schedule: %v", err)
		}
		if seen[job.ID] {
			t.Fatalf("job id %d reused", job.ID)
		}
		seen[job.ID] = true
		s.Cancel(job.ID)
	}
}
