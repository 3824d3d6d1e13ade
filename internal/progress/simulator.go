package progress

import (
	"context"
	"time"

	"studykit/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultStep     = 10
	DefaultInterval = 200 * time.Millisecond
	maxProgress     = 100
)

// Config describes a progress schedule: Step points every Interval until 100.
type Config struct {
	Step     int
	Interval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 || c.Step > maxProgress {
		c.Step = DefaultStep
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// Ticks returns how many ticks it takes to reach 100.
func (c Config) Ticks() int {
	c = c.withDefaults()
	return (maxProgress + c.Step - 1) / c.Step
}

// TotalDuration is the upper bound of a task that is never cancelled.
func (c Config) TotalDuration() time.Duration {
	c = c.withDefaults()
	return time.Duration(c.Ticks()) * c.Interval
}

// ReportFunc receives every emitted progress value of a task.
// It must not cancel the task it is reporting for.
type ReportFunc func(taskID string, progress int)

// Ticker is the time source driving a schedule.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Scheduler starts cancellable progress tasks. A real backend call replaces the Simulator
// behind this interface.
type Scheduler interface {
	Start(ctx context.Context, report ReportFunc) *Task
}

// Simulator emits a deterministic 0..100 schedule standing in for a backend call.
type Simulator struct {
	cfg       Config
	newTicker TickerFunc
	newID     func() string
	logger    *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithTicker replaces the wall clock ticker.
func WithTicker(f TickerFunc) Option {
	return func(s *Simulator) {
		if f != nil {
			s.newTicker = f
		}
	}
}

// WithLogger sets the logger used for task lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the ULID task id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Simulator) {
		if f != nil {
			s.newID = f
		}
	}
}

// NewSimulator creates a new Simulator instance.
func NewSimulator(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:       cfg.withDefaults(),
		newTicker: newTimeTicker,
		newID:     util.NewULID,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective schedule.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Start launches a task. Cancelling ctx cancels the task.
func (s *Simulator) Start(ctx context.Context, report ReportFunc) *Task {
	runCtx, cancel := context.WithCancel(ctx)
	t := newTask(s.newID(), cancel)
	ticker := s.newTicker(s.cfg.Interval)

	s.logger.Debug("Progress task started",
		zap.String("task_id", t.id),
		zap.Int("step", s.cfg.Step),
		zap.Duration("interval", s.cfg.Interval),
	)
	go s.run(runCtx, t, ticker, report)
	return t
}

func (s *Simulator) run(ctx context.Context, t *Task, ticker Ticker, report ReportFunc) {
	defer close(t.done)
	defer ticker.Stop()
	defer t.cancel()

	if !t.emit(ctx, 0, report) {
		s.logFinished(t)
		return
	}

	current := 0
	for current < maxProgress {
		select {
		case <-ctx.Done():
			t.markCancelled()
			s.logFinished(t)
			return
		case <-ticker.C():
			current += s.cfg.Step
			if current > maxProgress {
				current = maxProgress
			}
			if !t.emit(ctx, current, report) {
				s.logFinished(t)
				return
			}
		}
	}

	s.logFinished(t)
}

func (s *Simulator) logFinished(t *Task) {
	snap := t.Snapshot()
	s.logger.Debug("Progress task finished",
		zap.String("task_id", snap.ID),
		zap.String("state", string(snap.State)),
	)
}

var _ Scheduler = (*Simulator)(nil)
