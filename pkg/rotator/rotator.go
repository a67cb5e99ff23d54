// Package rotator runs the background worker that refreshes the PIN of
// every session token on a fixed period.
package rotator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jack5341/attendance-server/internal/store"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/rs/zerolog"
)

const (
	DefaultInterval = 90 * time.Second
	DefaultTimeout  = 30 * time.Second
)

type Rotator struct {
	store    store.Store
	logger   zerolog.Logger
	interval time.Duration
	timeout  time.Duration
	nextPIN  func() int

	mutex sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

type Option func(*Rotator)

func WithInterval(d time.Duration) Option {
	return func(r *Rotator) { r.interval = d }
}

func WithTimeout(d time.Duration) Option {
	return func(r *Rotator) { r.timeout = d }
}

func WithPINSource(nextPIN func() int) Option {
	return func(r *Rotator) { r.nextPIN = nextPIN }
}

func New(st store.Store, logger zerolog.Logger, opts ...Option) *Rotator {
	r := &Rotator{
		store:    st,
		logger:   logger,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		nextPIN:  tokenmanager.NewPIN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the worker. It runs until ctx is done or Stop is called.
// Calling Start on a running worker does nothing.
func (r *Rotator) Start(ctx context.Context) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.done != nil {
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.run(ctx, r.stop, r.done)

	r.logger.Info().Dur("interval", r.interval).Msg("pin rotation started")
}

// Stop signals the worker and waits for an in-flight tick to finish.
func (r *Rotator) Stop() {
	r.mutex.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mutex.Unlock()
	if done == nil {
		return
	}
	close(stop)
	<-done

	r.logger.Info().Msg("pin rotation stopped")
}

func (r *Rotator) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			// Errors are logged inside Tick; the next tick retries.
			_, _ = r.Tick(ctx)
		}
	}
}

// Tick rotates every session's PIN once.
func (r *Rotator) Tick(ctx context.Context) (rotated int, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			rotated, err = 0, fmt.Errorf("pin rotation panicked: %v", p)
			r.logger.Error().Err(err).Msg("pin rotation tick abandoned")
		}
	}()

	rotated, err = r.store.RotatePINs(ctx, r.nextPIN)
	if err != nil {
		r.logger.Error().Err(err).Msg("pin rotation tick failed")
		return 0, err
	}
	r.logger.Debug().Int("rotated", rotated).Msg("session pins rotated")
	return rotated, nil
}
