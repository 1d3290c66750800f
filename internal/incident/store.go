package incident

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// Store owns event lifetimes. Events are never deleted, only resolved.
// It is not safe for concurrent use; the environment serializes access.
type Store struct {
	order  []string
	events map[string]*models.EmergencyEvent
}

func NewStore() *Store {
	return &Store{events: make(map[string]*models.EmergencyEvent)}
}

// Spawn creates an event with id "<type>_<n>", n being the number of events so far.
func (s *Store) Spawn(eventType string, loc models.Location, floor int, severity models.Severity, now time.Time, rng *rand.Rand) (*models.EmergencyEvent, error) {
	id := fmt.Sprintf("%s_%d", eventType, len(s.order))
	e, err := New(id, eventType, loc, floor, severity, now, rng)
	if err != nil {
		return nil, err
	}
	s.events[id] = e
	s.order = append(s.order, id)
	return e.Clone(), nil
}

// Get returns a copy of one event.
func (s *Store) Get(id string) (*models.EmergencyEvent, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("incident: %s: %w", id, models.ErrEventNotFound)
	}
	return e.Clone(), nil
}

// List returns copies of every event in creation order.
func (s *Store) List() []*models.EmergencyEvent {
	out := make([]*models.EmergencyEvent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id].Clone())
	}
	return out
}

// Active returns copies of unresolved events in creation order.
func (s *Store) Active() []*models.EmergencyEvent {
	var out []*models.EmergencyEvent
	for _, id := range s.order {
		if e := s.events[id]; e.IsActive() {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Tick updates every event by elapsed minutes.
func (s *Store) Tick(elapsed float64, rng *rand.Rand) {
	for _, id := range s.order {
		Update(s.events[id], elapsed, rng)
	}
}

// Resolve deactivates one event.
func (s *Store) Resolve(id string, at time.Time) error {
	e, ok := s.events[id]
	if !ok {
		return fmt.Errorf("incident: %s: %w", id, models.ErrEventNotFound)
	}
	Resolve(e, at)
	return nil
}
