package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/domain"
	infraconfig "fxrates-ingest/internal/infrastructure/config"

	"go.uber.org/zap"
)

var _ application.Worker = (*Scheduler)(nil)

// Ticker runs one ingestion pass.
type Ticker interface {
	Tick(ctx context.Context) (domain.TickReport, error)
}

// Scheduler fires Ingest.Tick every Every. At most one tick runs at a time;
// a fire that finds a tick in flight is dropped, never queued.
type Scheduler struct {
	Ingest  Ticker
	Lock    application.TickLock
	LockKey string
	Metrics application.IngestMetrics

	Every      time.Duration
	RunAtStart bool
	Log        *zap.Logger

	once     sync.Once
	busy     atomic.Bool
	inflight sync.WaitGroup

	mu        sync.Mutex
	cancel    context.CancelFunc
	stopped   chan struct{}
	stopEarly bool
}

func (s *Scheduler) defaults() {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.Lock == nil {
		s.Lock = application.NoopTickLock{}
	}
	if s.Metrics == nil {
		s.Metrics = application.NoopMetrics{}
	}
	if s.LockKey == "" {
		s.LockKey = infraconfig.DefaultTickLockKey
	}
	if s.Every <= 0 {
		s.Every = infraconfig.DefaultSchedulerInterval
	}
}

// Start blocks until ctx is done or Stop is called, then waits for the
// in-flight tick to return. If Stop already ran with no loop active, Start
// returns at once.
func (s *Scheduler) Start(ctx context.Context) {
	s.once.Do(s.defaults)
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.stopEarly {
		s.stopEarly = false
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.stopped = make(chan struct{})
	stopped := s.stopped
	s.mu.Unlock()
	defer close(stopped)
	defer cancel()

	t := time.NewTicker(s.Every)
	defer t.Stop()

	s.Log.Info("scheduler_started", zap.Duration("every", s.Every))
	if s.RunAtStart {
		s.fire(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			s.inflight.Wait()
			s.Log.Info("scheduler_stopped")
			return
		case <-t.C:
			s.fire(ctx)
		}
	}
}

// Stop cancels the loop and waits for Start to return. Called before Start,
// it makes the next Start return immediately.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	if cancel == nil {
		s.stopEarly = true
	}
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (s *Scheduler) fire(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.Log.Warn("tick_skipped_busy")
		s.Metrics.TickSkipped("busy")
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.busy.Store(false)
		_, _ = s.run(ctx)
	}()
}

// RunOnce runs a tick on the caller's goroutine. It returns
// application.ErrTickBusy instead of waiting when a tick is already running.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.TickReport, error) {
	s.once.Do(s.defaults)
	if !s.busy.CompareAndSwap(false, true) {
		s.Metrics.TickSkipped("busy")
		return domain.TickReport{}, application.ErrTickBusy
	}
	s.inflight.Add(1)
	defer s.inflight.Done()
	defer s.busy.Store(false)
	return s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) (domain.TickReport, error) {
	release, ok, err := s.Lock.TryAcquire(ctx, s.LockKey)
	if err != nil {
		s.Log.Error("tick_lock_failed", zap.Error(err))
		return domain.TickReport{}, fmt.Errorf("acquire tick lock: %w", err)
	}
	if !ok {
		s.Log.Info("tick_skipped_leased", zap.String("key", s.LockKey))
		s.Metrics.TickSkipped("leased")
		return domain.TickReport{}, fmt.Errorf("%w: lease %s held elsewhere", application.ErrTickBusy, s.LockKey)
	}
	defer release(context.WithoutCancel(ctx))

	rep, err := s.Ingest.Tick(ctx)
	if err != nil {
		lvl := s.Log.Error
		if errors.Is(err, context.Canceled) {
			lvl = s.Log.Info
		}
		lvl("tick_failed", zap.Error(err), zap.Int("stored", rep.Stored))
		return rep, err
	}
	s.Log.Info("tick_done",
		zap.Int("pairs", rep.Pairs),
		zap.Int("stored", rep.Stored),
		zap.Int("fetch_failed", rep.FetchFailed),
		zap.Int("store_failed", rep.StoreFailed),
		zap.Int("panicked", rep.Panicked),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}
