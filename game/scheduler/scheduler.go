/*
Package scheduler drives the simulation at a fixed tick.

Every tick takes a fresh intruder snapshot, advances movement, and runs one
state machine step for each squad in a stable order. A coarser pass hands out
routes to idle agents.
*/
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
)

const (
	DefaultTickInterval   = 100 * time.Millisecond
	DefaultAssignInterval = time.Second
)

var (
	ErrInvalidInterval = errors.New("tick interval must be positive")
	ErrNoSource        = errors.New("no snapshot source")
)

// Squad is one state machine the scheduler drives.
type Squad interface {
	ID() string
	Tick(snap game.TargetSnapshot, dt time.Duration)
	AssignRoutes() int
}

// Config holds the scheduler intervals. Zero fields fall back to the defaults.
type Config struct {
	TickInterval   time.Duration
	AssignInterval time.Duration
}

// Scheduler runs ticks either on demand with Step or on a clock with Start.
type Scheduler struct {
	sync.Mutex
	source         game.SnapshotSource
	steppers       []game.Stepper
	squads         []Squad
	tickInterval   time.Duration
	assignInterval time.Duration
	sinceAssign    time.Duration
	log            game.Logger

	tickCount atomic.Uint64
	lifecycle sync.Mutex
	stopChan  chan struct{}
	stopped   bool
	wg        sync.WaitGroup
	running   atomic.Bool
}

// New creates a scheduler. Steppers advance in the given order before squads tick.
func New(cfg Config, source game.SnapshotSource, steppers []game.Stepper, squads []Squad, log game.Logger) (*Scheduler, error) {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.AssignInterval == 0 {
		cfg.AssignInterval = DefaultAssignInterval
	}
	if cfg.TickInterval < 0 || cfg.AssignInterval < 0 {
		return nil, ErrInvalidInterval
	}
	if source == nil {
		return nil, ErrNoSource
	}

	return &Scheduler{
		source:         source,
		steppers:       steppers,
		squads:         squads,
		tickInterval:   cfg.TickInterval,
		assignInterval: cfg.AssignInterval,
		log:            log,
		stopChan:       make(chan struct{}),
	}, nil
}

// Step executes exactly one tick.
func (s *Scheduler) Step() {
	s.Lock()
	defer s.Unlock()

	dt := s.tickInterval
	if s.tickCount.Load() == 0 || s.sinceAssign >= s.assignInterval {
		assigned := 0
		for _, sq := range s.squads {
			assigned += sq.AssignRoutes()
		}
		s.sinceAssign = 0
		if assigned > 0 {
			s.log.Debug(fmt.Sprintf("assigned %d routes", assigned))
		}
	}
	s.sinceAssign += dt

	snap := s.source.Snapshot()
	for _, st := range s.steppers {
		st.Step(dt)
	}
	for _, sq := range s.squads {
		sq.Tick(snap, dt)
	}

	s.tickCount.Add(1)
}

// Start runs ticks on a drift-corrected clock until Stop is called.
// A stopped scheduler does not start again.
func (s *Scheduler) Start() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.stopped || s.running.Load() {
		return
	}
	s.running.Store(true)
	s.wg.Add(1)
	go s.loop()
}

// Stop halts the clock and waits for the running tick to finish. Safe to call more than once,
// and before Start.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	if s.stopped {
		s.lifecycle.Unlock()
		return
	}
	s.stopped = true
	if s.running.Swap(false) {
		close(s.stopChan)
	}
	s.lifecycle.Unlock()

	s.wg.Wait()
}

// Running reports whether the clock loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Ticks returns how many ticks have run.
func (s *Scheduler) Ticks() uint64 {
	return s.tickCount.Load()
}

// TickInterval returns the simulated length of one tick.
func (s *Scheduler) TickInterval() time.Duration {
	return s.tickInterval
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	s.log.Info(fmt.Sprintf("scheduler started: tick %v, assign %v", s.tickInterval, s.assignInterval))

	next := time.Now().Add(s.tickInterval)
	timer := time.NewTimer(s.tickInterval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Info(fmt.Sprintf("scheduler stopped after %d ticks", s.Ticks()))
			return
		case <-timer.C:
		}

		s.Step()

		next = next.Add(s.tickInterval)
		now := time.Now()
		if next.Before(now) {
			// Fell behind by more than a tick: drop the backlog instead of bursting.
			next = now.Add(s.tickInterval)
		}
		timer.Reset(next.Sub(now))
	}
}
