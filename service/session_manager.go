package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/game/session"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/google/uuid"
)

const (
	defaultMaxSessions     = 8
	defaultTimelineBacklog = 256
	timelineWriteTimeout   = time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrNotOwner        = errors.New("session belongs to another operator")
	ErrShuttingDown    = errors.New("session manager is shutting down")
)

var _ i.SessionManager = &SessionManager{}

type record struct {
	sessionID string
	t         guard.Transition
}

// SessionManager runs sessions and records their squad transitions on a timeline.
type SessionManager struct {
	sync.RWMutex
	sessions    map[uuid.UUID]*session.Session
	maxSessions int
	closed      bool

	timeline i.Timeline
	newAlarm func() game.Alarm
	logger   game.Logger

	backlog  chan record
	wg       sync.WaitGroup
	stopping sync.WaitGroup
}

// SessionManagerConfig holds the SessionManager collaborators.
type SessionManagerConfig struct {
	MaxSessions     int
	Timeline        i.Timeline
	NewAlarm        func() game.Alarm // One alarm per session.
	Logger          game.Logger
	TimelineBacklog int
}

// NewSessionManager creates a SessionManager and starts its timeline writer.
func NewSessionManager(c *SessionManagerConfig) (*SessionManager, error) {
	if c.Timeline == nil || c.NewAlarm == nil || c.Logger == nil {
		return nil, ErrMissingDependency
	}
	maxSessions := c.MaxSessions
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	backlog := c.TimelineBacklog
	if backlog <= 0 {
		backlog = defaultTimelineBacklog
	}

	m := &SessionManager{
		sessions:    make(map[uuid.UUID]*session.Session),
		maxSessions: maxSessions,
		timeline:    c.Timeline,
		newAlarm:    c.NewAlarm,
		logger:      c.Logger,
		backlog:     make(chan record, backlog),
	}
	m.wg.Add(1)
	go m.writeTimeline()
	return m, nil
}

// NewSession builds and starts a session owned by operator.
func (m *SessionManager) NewSession(_ context.Context, operator uuid.UUID, sc *config.Scenario) (uuid.UUID, error) {
	if err := sc.Validate(); err != nil {
		return uuid.Nil, err
	}

	m.Lock()
	defer m.Unlock()

	if m.closed {
		return uuid.Nil, ErrShuttingDown
	}
	if len(m.sessions) >= m.maxSessions {
		m.logger.Warning(fmt.Sprintf("rejecting session for %s: %d running", operator, len(m.sessions)))
		return uuid.Nil, ErrTooManySessions
	}

	id := uuid.New()
	for {
		if _, ok := m.sessions[id]; !ok {
			break
		}
		id = uuid.New()
	}

	sessionID := id.String()
	sess, err := session.New(id, operator, sc, session.Deps{
		Alarm:    m.newAlarm(),
		Observer: guard.ObserverFunc(func(t guard.Transition) { m.record(sessionID, t) }),
		Logger:   m.logger,
	})
	if err != nil {
		m.logger.Error(fmt.Sprintf("creating session for %s: %v", operator, err))
		return uuid.Nil, err
	}

	m.sessions[id] = sess
	sess.Start()
	m.logger.Info(fmt.Sprintf("started session %s for operator %s", id, operator))
	return id, nil
}

// record queues a transition for the timeline. It runs inside a tick, so a full backlog drops the record.
func (m *SessionManager) record(sessionID string, t guard.Transition) {
	select {
	case m.backlog <- record{sessionID: sessionID, t: t}:
	default:
		m.logger.Warning(fmt.Sprintf("timeline backlog full, dropped %s -> %s of session %s", t.From, t.To, sessionID))
	}
}

func (m *SessionManager) writeTimeline() {
	defer m.wg.Done()
	for r := range m.backlog {
		ctx, cancel := context.WithTimeout(context.Background(), timelineWriteTimeout)
		if err := m.timeline.Append(ctx, r.sessionID, r.t); err != nil {
			m.logger.Error(fmt.Sprintf("recording transition of session %s: %v", r.sessionID, err))
		}
		cancel()
	}
}

func (m *SessionManager) get(id uuid.UUID) (*session.Session, error) {
	m.RLock()
	defer m.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (m *SessionManager) owned(id, operator uuid.UUID) (*session.Session, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if sess.Operator != operator {
		return nil, ErrNotOwner
	}
	return sess, nil
}

// Status returns the live state of a session.
func (m *SessionManager) Status(id uuid.UUID) (session.Status, error) {
	sess, err := m.get(id)
	if err != nil {
		return session.Status{}, err
	}
	return sess.Status(), nil
}

// Layout returns the world rows of a session, top row first.
func (m *SessionManager) Layout(id uuid.UUID) ([]string, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return sess.World().Layout(), nil
}

// Transitions returns the recorded transitions of a session. Transitions outlive the session
// until the timeline expires them.
func (m *SessionManager) Transitions(ctx context.Context, id uuid.UUID) ([]guard.Transition, error) {
	ts, err := m.timeline.Range(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		if _, err := m.get(id); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// Command steers the intruder of a session owned by operator.
func (m *SessionManager) Command(id, operator uuid.UUID, cmd session.Command) error {
	sess, err := m.owned(id, operator)
	if err != nil {
		return err
	}
	return sess.Apply(cmd)
}

// Stop halts and forgets a session owned by operator.
func (m *SessionManager) Stop(id, operator uuid.UUID) error {
	sess, err := m.owned(id, operator)
	if err != nil {
		return err
	}

	m.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.stopping.Add(1)
	m.Unlock()

	sess.Stop()
	m.stopping.Done()
	m.logger.Info(fmt.Sprintf("stopped session %s after %d ticks", id, sess.Status().Ticks))
	return nil
}

// Purge stops a session owned by operator and deletes its recorded transitions.
func (m *SessionManager) Purge(ctx context.Context, id, operator uuid.UUID) error {
	if err := m.Stop(id, operator); err != nil {
		return err
	}
	if err := m.timeline.Drop(ctx, id.String()); err != nil {
		return fmt.Errorf("dropping timeline of %s: %w", id, err)
	}
	return nil
}

// StopAll halts every session, then flushes the timeline backlog. The manager accepts no sessions afterwards.
func (m *SessionManager) StopAll() {
	m.Lock()
	if m.closed {
		m.Unlock()
		return
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*session.Session)
	m.Unlock()

	for _, sess := range sessions {
		sess.Stop()
	}
	m.stopping.Wait()
	close(m.backlog)
	m.wg.Wait()
	m.logger.Info(fmt.Sprintf("stopped %d sessions", len(sessions)))
}

// Count returns how many sessions are running.
func (m *SessionManager) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.sessions)
}
