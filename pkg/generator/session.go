package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout is the hard limit for a single session generation.
const DefaultTimeout = 10 * time.Second

var (
	// ErrSuperseded is returned when a newer request finished waiting first.
	ErrSuperseded = errors.New("generation superseded by newer request")
	// ErrTimeout is returned when a generation outlives the session timeout.
	ErrTimeout = errors.New("generation timed out")
)

// Session serializes interactive generation requests. Each request runs on
// its own goroutine; the caller waits up to the timeout, and a result that
// belongs to an older request than the latest one is discarded.
//
// Generation cannot be interrupted, so a timed out or superseded build
// keeps running in the background and its result is dropped.
type Session struct {
	gen     *Generator
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
	latest     *Result
}

// NewSession wraps g. A zero timeout uses DefaultTimeout.
func NewSession(g *Generator, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{gen: g, timeout: timeout}
}

type sessionResult struct {
	res Result
	err error
}

// Generate starts req and waits for it. It returns ErrTimeout,
// ErrSuperseded or ctx.Err() instead of a result when the wait ends early
// or a newer request has been issued since.
func (s *Session) Generate(ctx context.Context, req Request) (Result, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	ch := make(chan sessionResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- sessionResult{err: fmt.Errorf("panic during generation: %v", r)}
			}
		}()
		res, err := s.gen.Generate(req)
		ch <- sessionResult{res: res, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return Result{}, ErrSuperseded
		}
		if r.err != nil {
			return Result{}, r.err
		}
		s.latest = &r.res
		return r.res, nil

	case <-timer.C:
		return Result{}, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)

	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Latest returns the most recent result the session delivered.
func (s *Session) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}
