// Package scheduler runs the sync job in the background: periodically while
// its conditions hold, on demand, and again with exponential backoff after a
// transient failure. At most one run is outstanding at any time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nipa/healthsync/internal/logging"
	"github.com/sethvargo/go-retry"
)

// State of the scheduled unit of work.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateRetryScheduled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateRetryScheduled:
		return "RETRY_SCHEDULED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Job is one sync run.
type Job func(ctx context.Context) Outcome

// Condition gates periodic and retry runs. Met must not block.
type Condition struct {
	Name string
	Met  func() bool
}

const (
	DefaultInterval       = 15 * time.Minute
	DefaultInitialBackoff = 15 * time.Minute
	DefaultMaxBackoff     = 5 * time.Hour
)

type Config struct {
	Interval       time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Conditions     []Condition
}

// Status is a snapshot for diagnostics.
type Status struct {
	State       State
	Attempt     int
	Runs        int
	LastOutcome *Outcome
	LastRunAt   time.Time
	NextRetryAt time.Time
}

type Scheduler struct {
	job  Job
	cfg  Config
	log  logging.Logger
	kick chan struct{}

	mu      sync.Mutex
	status  Status
	backoff retry.Backoff
}

func New(job Job, cfg Config, log logging.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	return &Scheduler{
		job:     job,
		cfg:     cfg,
		log:     log.With("component", "scheduler"),
		kick:    make(chan struct{}, 1),
		backoff: newBackoff(cfg),
	}
}

// newBackoff doubles from InitialBackoff and never exceeds MaxBackoff.
func newBackoff(cfg Config) retry.Backoff {
	return retry.WithCappedDuration(cfg.MaxBackoff, retry.NewExponential(cfg.InitialBackoff))
}

// TriggerNow requests a run regardless of the periodic schedule. It replaces
// a pending retry. Calls made while a run is already queued are coalesced;
// calls made during a run queue exactly one follow-up.
func (s *Scheduler) TriggerNow() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	if st.LastOutcome != nil {
		o := *st.LastOutcome
		st.LastOutcome = &o
	}
	return st
}

// Run drives the schedule on the calling goroutine until ctx is done.
// Runs execute sequentially on this goroutine and are never preempted.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var (
		retryTimer *time.Timer
		retryC     <-chan time.Time
	)
	stopRetry := func() {
		if retryTimer != nil {
			retryTimer.Stop()
			retryTimer, retryC = nil, nil
		}
	}
	defer stopRetry()

	s.log.Info(ctx, "scheduler started", "interval", s.cfg.Interval.String())

	for {
		var trigger string
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			trigger = "periodic"
		case <-retryC:
			retryTimer, retryC = nil, nil
			trigger = "retry"
		case <-s.kick:
			trigger = "manual"
		}

		s.settle()

		if trigger != "manual" {
			if unmet := s.unmetCondition(); unmet != "" {
				s.log.Debug(ctx, "run skipped", "trigger", trigger, "condition", unmet)
				if trigger == "retry" {
					s.dropRetry()
				}
				continue
			}
		}

		stopRetry()
		if delay, again := s.runOnce(ctx, trigger); again {
			retryTimer = time.NewTimer(delay)
			retryC = retryTimer.C
		}
	}
}

// settle moves a finished SUCCEEDED run back to PENDING once the next
// trigger arrives.
func (s *Scheduler) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State == StateSucceeded {
		s.status.State = StatePending
	}
}

// dropRetry forgets a retry that fired while a condition was unmet. The
// next periodic tick that finds the conditions met runs the job instead.
func (s *Scheduler) dropRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.NextRetryAt = time.Time{}
}

func (s *Scheduler) unmetCondition() string {
	for _, c := range s.cfg.Conditions {
		if c.Met != nil && !c.Met() {
			return c.Name
		}
	}
	return ""
}

func (s *Scheduler) runOnce(ctx context.Context, trigger string) (time.Duration, bool) {
	s.mu.Lock()
	s.status.State = StateRunning
	s.status.NextRetryAt = time.Time{}
	attempt := s.status.Attempt + 1
	s.mu.Unlock()

	s.log.Info(ctx, "sync run started", "trigger", trigger, "attempt", attempt)
	started := time.Now()
	outcome := s.safeRun(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Runs++
	s.status.LastRunAt = started
	s.status.LastOutcome = &outcome

	switch outcome.Kind {
	case OutcomeSuccess:
		s.log.Info(ctx, "sync run succeeded", "took", time.Since(started).String())
		s.resetLocked()
		s.status.State = StateSucceeded
		return 0, false

	case OutcomeFatalFailure:
		s.log.Error(ctx, "sync run failed permanently", "reason", outcome.Reason)
		s.resetLocked()
		return 0, false

	default:
		delay, _ := s.backoff.Next()
		s.status.Attempt++
		s.status.State = StateRetryScheduled
		s.status.NextRetryAt = time.Now().Add(delay)
		s.log.Warn(ctx, "sync run will be retried",
			"reason", outcome.Reason, "attempt", s.status.Attempt, "delay", delay.String())
		return delay, true
	}
}

// resetLocked returns to PENDING and restarts the backoff sequence.
func (s *Scheduler) resetLocked() {
	s.status.State = StatePending
	s.status.Attempt = 0
	s.status.NextRetryAt = time.Time{}
	s.backoff = newBackoff(s.cfg)
}

func (s *Scheduler) safeRun(ctx context.Context) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = TransientFailure(fmt.Sprintf("panic: %v", p))
		}
	}()
	return s.job(ctx)
}
