// Package scheduler defers single comment submissions to a future wall-clock
// time. Jobs live in memory only; one background worker polls on a fixed
// interval and fires everything that has come due.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/growthic-inc/growthic-reddit/common/outcome"
	"github.com/growthic-inc/growthic-reddit/common/reddit"
	"github.com/growthic-inc/growthic-reddit/services/app/poster"
	"github.com/sony/sonyflake/v2"
)

type (
	Status string

	// Job is a deferred comment submission. Status moves pending →
	// completed or pending → cancelled, both terminal; non-pending jobs
	// leave the live set.
	Job struct {
		ID           int64     `json:"id"`
		TargetURL    string    `json:"targetUrl"`
		SubmissionID string    `json:"-"`
		Text         string    `json:"text"`
		Ordinal      int       `json:"ordinal"`
		FireAt       time.Time `json:"fireAt"`
		Status       Status    `json:"status"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Commenter is the slice of the submitter the worker needs.
	Commenter interface {
		Comment(ctx context.Context, in *poster.CommentInput) (*poster.CommentOutput, error)
	}

	ScheduleInput struct {
		TargetURL string    `json:"targetUrl" validate:"required"`
		Text      string    `json:"text" validate:"required"`
		Ordinal   int       `json:"ordinal" validate:"required,min=1"`
		FireAt    time.Time `json:"fireAt" validate:"required"`
	}

	Scheduler struct {
		commenter Commenter
		flake     *sonyflake.Sonyflake
		tick      time.Duration

		mu      sync.Mutex
		jobs    map[int64]*Job
		running bool
		cancel  context.CancelFunc
		wg      sync.WaitGroup
	}
)

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ErrEmptyComment is returned by Schedule for an empty comment text.
var ErrEmptyComment = errors.New("comment text must not be empty")

func New(commenter Commenter, flake *sonyflake.Sonyflake, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	return &Scheduler{
		commenter: commenter,
		flake:     flake,
		tick:      tick,
		jobs:      make(map[int64]*Job),
	}
}

// Schedule stores a pending job and guarantees it is submitted at or after
// FireAt, exactly once, unless cancelled first. The target URL must contain
// the submission path marker. The worker starts implicitly on the first
// scheduled job. Delivery latency is bounded by one tick past FireAt.
func (s *Scheduler) Schedule(ctx context.Context, in *ScheduleInput) (*Job, error) {
	if in.Text == "" {
		return nil, ErrEmptyComment
	}

	submissionID, err := reddit.SubmissionIDFromURL(in.TargetURL)
	if err != nil {
		return nil, err
	}

	id, err := s.flake.NextID()
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:           id,
		TargetURL:    in.TargetURL,
		SubmissionID: submissionID,
		Text:         in.Text,
		Ordinal:      in.Ordinal,
		FireAt:       in.FireAt,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.startLocked()
	s.mu.Unlock()

	slog.Info("scheduled deferred comment",
		slog.Int64("job_id", job.ID),
		slog.Time("fire_at", job.FireAt),
		slog.Int("ordinal", job.Ordinal),
	)

	snapshot := *job
	return &snapshot, nil
}

// Cancel removes a pending job. It returns true only when the job still
// existed in pending state at the moment of the call; racing the worker's
// own removal of a just-fired job simply yields false.
func (s *Scheduler) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}

	delete(s.jobs, id)
	slog.Info("cancelled deferred comment", slog.Int64("job_id", id))
	return true
}

// ListPending returns snapshots of the live jobs ordered by fire time. The
// live set itself is never exposed.
func (s *Scheduler) ListPending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		pending = append(pending, *job)
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].FireAt.Equal(pending[j].FireAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].FireAt.Before(pending[j].FireAt)
	})

	return pending
}

// Start launches the worker if it is not already running. Schedule calls it
// implicitly; it exists so the app can start the worker eagerly.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

func (s *Scheduler) startLocked() {
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	slog.Info("scheduler worker started", slog.Duration("tick", s.tick))
}

// Close stops the worker and waits for an in-flight tick to finish. Pending
// jobs are dropped; nothing is persisted.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fireDue(ctx, time.Now())
		}
	}
}

// fireDue executes every job whose fire time has passed. Due jobs are removed
// from the live set under the lock before execution, so a concurrent Cancel
// observes "not found" and a job can never fire twice.
func (s *Scheduler) fireDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []*Job
	for id, job := range s.jobs {
		if !job.FireAt.After(now) {
			due = append(due, job)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })

	for _, job := range due {
		s.execute(ctx, job)
	}
}

// execute submits the comment. A remote failure still completes the job;
// there is no retry policy, the classified failure is logged for the
// operator to act on.
func (s *Scheduler) execute(ctx context.Context, job *Job) {
	job.Status = StatusCompleted

	_, err := s.commenter.Comment(ctx, &poster.CommentInput{
		Ordinal:      job.Ordinal,
		SubmissionID: job.SubmissionID,
		Text:         job.Text,
	})
	if err != nil {
		slog.Error("deferred comment failed",
			slog.Int64("job_id", job.ID),
			slog.String("kind", string(outcome.KindOf(err))),
			slog.Any("error", err),
		)
		return
	}

	slog.Info("deferred comment submitted",
		slog.Int64("job_id", job.ID),
		slog.Int("ordinal", job.Ordinal),
	)
}
