package environment

import (
	"fmt"
	"sync"
	"time"

	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
)

// RegisteredUnit is a registry entry.
type RegisteredUnit struct {
	Name         string          `json:"name"`
	Type         models.UnitType `json:"type"`
	RegisteredAt time.Time       `json:"registered_at"`
}

// Registry tracks the response units acting in one environment. It is
// started with the environment and stopping it releases every resource the
// units still hold.
type Registry struct {
	mu      sync.RWMutex
	env     *Environment
	order   []string
	units   map[string]RegisteredUnit
	running bool
}

func NewRegistry(env *Environment) *Registry {
	return &Registry{
		env:   env,
		units: make(map[string]RegisteredUnit),
	}
}

// Start opens the registry for registrations.
func (r *Registry) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = true
}

// Running reports whether the registry accepts units.
func (r *Registry) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Register adds a unit. Names are unique.
func (r *Registry) Register(name string, t models.UnitType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return fmt.Errorf("environment: registry is not running")
	}
	if name == "" {
		return fmt.Errorf("environment: unit name is required")
	}
	if _, ok := r.units[name]; ok {
		return fmt.Errorf("environment: unit %s already registered", name)
	}
	r.units[name] = RegisteredUnit{Name: name, Type: t, RegisteredAt: r.env.Now()}
	r.order = append(r.order, name)
	return nil
}

// Get looks up a unit.
func (r *Registry) Get(name string) (RegisteredUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[name]
	if !ok {
		return RegisteredUnit{}, fmt.Errorf("environment: unit %s: %w", name, models.ErrUnitNotFound)
	}
	return u, nil
}

// List returns units in registration order.
func (r *Registry) List() []RegisteredUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RegisteredUnit, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.units[name])
	}
	return out
}

// Stop releases every unit's resources and empties the registry.
func (r *Registry) Stop() {
	r.mu.Lock()
	names := r.order
	r.order = nil
	r.units = make(map[string]RegisteredUnit)
	r.running = false
	r.mu.Unlock()

	released := 0
	for _, name := range names {
		released += len(r.env.ReleaseUnit(name))
	}
	r.env.logger.WithFields(logrus.Fields{
		"service":  "Environment",
		"method":   "Registry.Stop",
		"units":    len(names),
		"released": released,
	}).Info("Unit registry stopped")
}
