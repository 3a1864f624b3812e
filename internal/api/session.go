package api

import (
	"context"
	"sync"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// session is one generation run. Its events are kept so that any number of
// late subscribers can replay them and then follow live.
type session struct {
	id   string
	deck *deck.Deck

	mu       sync.Mutex
	history  []orchestrator.ProgressEvent
	finished bool
	err      error
	changed  chan struct{}
}

func newSession(id string, d *deck.Deck) *session {
	return &session{id: id, deck: d, changed: make(chan struct{})}
}

func (s *session) publish(ev orchestrator.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, ev)
	s.notifyLocked()
}

func (s *session) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	s.err = err
	s.notifyLocked()
}

func (s *session) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *session) status() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.finished:
		return StatusPending, nil
	case s.err != nil:
		return StatusFailed, s.err
	default:
		return StatusSucceeded, nil
	}
}

// next blocks until there are events past cursor or the run has finished.
// An empty result with finished set means the stream is over.
func (s *session) next(ctx context.Context, cursor int) ([]orchestrator.ProgressEvent, bool, error) {
	for {
		s.mu.Lock()
		if cursor < len(s.history) {
			out := append([]orchestrator.ProgressEvent(nil), s.history[cursor:]...)
			s.mu.Unlock()
			return out, false, nil
		}
		if s.finished {
			s.mu.Unlock()
			return nil, true, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// waitFor returns the first event matching match, or the zero event once the
// run finishes without one.
func (s *session) waitFor(ctx context.Context, match func(orchestrator.ProgressEvent) bool) (orchestrator.ProgressEvent, error) {
	cursor := 0
	for {
		evs, done, err := s.next(ctx, cursor)
		if err != nil {
			return orchestrator.ProgressEvent{}, err
		}
		if done {
			return orchestrator.ProgressEvent{}, nil
		}
		for _, ev := range evs {
			if match(ev) {
				return ev, nil
			}
		}
		cursor += len(evs)
	}
}

// sessions indexes the latest run of each deck.
type sessions struct {
	mu   sync.RWMutex
	byID map[string]*session
}

func newSessions() *sessions {
	return &sessions{byID: make(map[string]*session)}
}

func (r *sessions) put(s *session) {
	r.mu.Lock()
	r.byID[s.id] = s
	r.mu.Unlock()
}

func (r *sessions) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

func (r *sessions) delete(id string) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

func errSessionNotFound() error {
	return errors.New(errors.ErrCodeNotFound, "presentation not found")
}
