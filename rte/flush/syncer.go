package flush

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 10 * time.Second
)

type (
	// State is what the runtime holds when a flush is taken.
	State struct {
		Delta cmi.Delta
		// SessionSeconds is the session time reported by content so far.
		SessionSeconds int64
		// Interactions are ready to be recorded.
		Interactions []cmi.Interaction
		// Settle, when set, is told whether Interactions[i] was recorded. An interaction that
		// was not recorded goes back to the runtime for a later flush to carry.
		Settle func(i int, recorded bool)
	}

	// SnapshotFunc captures the runtime state. final is set for the flush that ends the session.
	SnapshotFunc func(final bool) State

	Options struct {
		Interval time.Duration
		Timeout  time.Duration
		Retries  int
		Logger   core.Logger
	}

	// Syncer funnels the pushes and the periodic, explicit and teardown flushes of one session into the transport.
	// Sends leave in the order they were dispatched, one at a time.
	// Each flush carries only the session time not yet dispatched, so overlapping flushes never count twice.
	Syncer struct {
		transport Transport
		courseID  string
		sessionID string
		snapshot  SnapshotFunc
		opts      Options

		mu       sync.Mutex
		reported int64 // session seconds handed to in-flight or successful flushes
		ticking  bool  // a periodic flush is queued or in flight
		queue    []func()
		sending  bool // a sender goroutine is draining queue

		stop     chan struct{}
		stopOnce sync.Once
		wg       sync.WaitGroup
	}
)

// NewOptions builds syncer options from the sync configuration.
func NewOptions(conf core.SyncConfig, logger core.Logger) Options {
	return Options{
		Interval: conf.Interval,
		Timeout:  conf.Timeout,
		Retries:  conf.Retries,
		Logger:   logger,
	}
}

func New(transport Transport, courseID, sessionID string, snapshot SnapshotFunc, opts Options) *Syncer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Syncer{
		transport: transport,
		courseID:  courseID,
		sessionID: sessionID,
		snapshot:  snapshot,
		opts:      opts,
		stop:      make(chan struct{}),
	}
}

// Start runs the periodic flush until Finish or Teardown.
func (s *Syncer) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// tick starts a periodic flush unless the previous one is still in flight.
// A skipped tick loses nothing: its time is carried by the next flush.
func (s *Syncer) tick() {
	select {
	case <-s.stop:
		return
	default:
	}

	s.mu.Lock()
	if s.ticking {
		s.mu.Unlock()
		return
	}
	s.ticking = true
	s.mu.Unlock()

	s.enqueue(func() {
		defer func() {
			s.mu.Lock()
			s.ticking = false
			s.mu.Unlock()
		}()
		_ = s.flush(context.Background(), false, s.opts.Retries)
	})
}

// enqueue appends a send to the queue and starts the sender if it is idle.
func (s *Syncer) enqueue(job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, job)
	if s.sending {
		return
	}
	s.sending = true
	s.wg.Add(1)
	go s.drain()
}

func (s *Syncer) drain() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.sending = false
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()
		job()
	}
}

func (s *Syncer) halt() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Push sends a single element as soon as the sends queued before it are done.
func (s *Syncer) Push(element, value string) {
	s.enqueue(func() {
		err := s.attempt(context.Background(), s.opts.Retries, func(ctx context.Context) error {
			return s.transport.SetValue(ctx, s.courseID, element, value)
		})
		if err != nil {
			s.opts.Logger.Error(fmt.Sprintf("push of %s dropped", element), errors.Wrap(err, "pushing value"), s.extra())
		}
	})
}

// Commit flushes the whole mirror in the background.
func (s *Syncer) Commit() {
	s.enqueue(func() {
		_ = s.flush(context.Background(), false, s.opts.Retries)
	})
}

// Finish stops the periodic flush and queues the final flush, which also closes the session.
// The final flush goes out after every send dispatched before it.
func (s *Syncer) Finish() {
	s.halt()
	s.enqueue(func() {
		_ = s.flush(context.Background(), true, s.opts.Retries)
	})
}

// Teardown stops the periodic flush and makes a single best-effort flush bounded by ctx,
// after the sends already queued. The session is left open.
func (s *Syncer) Teardown(ctx context.Context) error {
	s.halt()
	done := make(chan error, 1)
	s.enqueue(func() {
		done <- s.flush(ctx, false, 0)
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every dispatched flush is done. Call it after Finish or Teardown.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Reported returns the session seconds handed over so far.
func (s *Syncer) Reported() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reported
}

// reserve claims the session time not yet dispatched.
func (s *Syncer) reserve(total int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	delta := total - s.reported
	if delta < 0 {
		delta = 0
	}
	s.reported += delta
	return delta
}

// release gives back time claimed by a flush that failed, for the next flush to carry.
func (s *Syncer) release(delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reported -= delta
}

func (s *Syncer) flush(ctx context.Context, final bool, retries int) error {
	state := s.snapshot(final)
	delta := state.Delta
	secs := s.reserve(state.SessionSeconds)
	if secs > 0 {
		delta.SessionTime = cmi.String(cmi.EncodeTime(secs))
	}

	for i, in := range state.Interactions {
		in := in
		err := s.attempt(ctx, retries, func(ctx context.Context) error {
			return s.transport.RecordInteraction(ctx, s.courseID, in)
		})
		if err != nil {
			s.opts.Logger.Error(fmt.Sprintf("interaction %s deferred", in.ID), errors.Wrap(err, "recording interaction"), s.extra())
		}
		if state.Settle != nil {
			state.Settle(i, err == nil)
		}
	}

	err := s.attempt(ctx, retries, func(ctx context.Context) error {
		if final {
			return s.transport.Finish(ctx, s.courseID, s.sessionID, delta)
		}
		return s.transport.Commit(ctx, s.courseID, delta)
	})
	if err != nil {
		s.release(secs)
		s.opts.Logger.Error("flush dropped", errors.Wrap(err, "flushing"), s.extra())
		return err
	}
	return nil
}

// attempt calls send once plus `retries` more times while it fails, each call bounded by the transport timeout.
func (s *Syncer) attempt(ctx context.Context, retries int, send func(context.Context) error) error {
	var err error
	for i := 0; i <= retries; i++ {
		actx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		err = send(actx)
		cancel()
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	return err
}

func (s *Syncer) extra() map[string]interface{} {
	return map[string]interface{}{"course_id": s.courseID, "session_id": s.sessionID}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
