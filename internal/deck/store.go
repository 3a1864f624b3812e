package deck

import (
	"sync"

	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/google/uuid"
)

// Store holds the live decks of the server, one per session id.
type Store struct {
	mu     sync.RWMutex
	decks  map[string]*Deck
	logger *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	return &Store{
		decks:  make(map[string]*Deck),
		logger: log,
	}
}

// Create registers an empty deck under a fresh session id.
func (s *Store) Create() (string, *Deck) {
	id := uuid.New().String()
	d := New(s.logger.With("session_id", id))

	s.mu.Lock()
	s.decks[id] = d
	s.mu.Unlock()

	return id, d
}

func (s *Store) Get(id string) (*Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decks[id]
	return d, ok
}

// GetOrCreate returns the deck for id, registering an empty one if needed.
func (s *Store) GetOrCreate(id string) *Deck {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.decks[id]; ok {
		return d
	}
	d := New(s.logger.With("session_id", id))
	s.decks[id] = d
	return d
}

// Delete cancels the deck's session and forgets it.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	d, ok := s.decks[id]
	delete(s.decks, id)
	s.mu.Unlock()

	if ok {
		d.Reset()
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decks)
}
