// Package ledger is the registry of individually owned response resources.
//
// All mutating operations run under one ledger-wide mutex, so the
// check-and-set in Assign and OrganizeTeam is atomic: a resource is never
// observed available after another assignment has claimed it.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// BundlePolicy decides what happens to already claimed resources when a
// bundle allocation cannot be fully satisfied.
type BundlePolicy string

const (
	// PolicyPartial keeps whatever was assigned and reports the shortfall.
	PolicyPartial BundlePolicy = "partial"
	// PolicyRollback releases everything the failed call assigned.
	PolicyRollback BundlePolicy = "rollback"
)

// ParseBundlePolicy falls back to PolicyPartial for unknown values.
func ParseBundlePolicy(s string) BundlePolicy {
	if BundlePolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyRollback {
		return PolicyRollback
	}
	return PolicyPartial
}

type Ledger struct {
	mu          sync.Mutex
	order       []string
	resources   map[string]*models.Resource
	assignments map[string][]string
	policy      BundlePolicy
}

func New(policy BundlePolicy) *Ledger {
	if policy == "" {
		policy = PolicyPartial
	}
	return &Ledger{
		resources:   make(map[string]*models.Resource),
		assignments: make(map[string][]string),
		policy:      policy,
	}
}

// Policy returns the bundle allocation policy.
func (l *Ledger) Policy() BundlePolicy {
	return l.policy
}

// Add registers a resource. New resources start available and unowned.
func (l *Ledger) Add(r models.Resource) error {
	if r.ID == "" {
		return fmt.Errorf("ledger: resource id is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.resources[r.ID]; exists {
		return fmt.Errorf("ledger: resource %s already registered", r.ID)
	}
	rc := r.Clone()
	rc.Status = models.StatusAvailable
	rc.Owner = ""
	l.resources[r.ID] = &rc
	l.order = append(l.order, r.ID)
	return nil
}

// Len returns the number of registered resources.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Get returns a copy of one resource.
func (l *Ledger) Get(id string) (models.Resource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.resources[id]
	if !ok {
		return models.Resource{}, fmt.Errorf("ledger: resource %s: %w", id, models.ErrResourceNotFound)
	}
	return r.Clone(), nil
}

// Assign claims an available resource for unitID.
func (l *Ledger) Assign(resourceID, unitID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.assignLocked(resourceID, unitID)
}

func (l *Ledger) assignLocked(resourceID, unitID string) error {
	if unitID == "" {
		return fmt.Errorf("ledger: assign %s: %w", resourceID, models.ErrEmptyUnitID)
	}
	r, ok := l.resources[resourceID]
	if !ok {
		return fmt.Errorf("ledger: resource %s: %w", resourceID, models.ErrResourceNotFound)
	}
	if r.Status != models.StatusAvailable {
		return fmt.Errorf("ledger: resource %s is %s: %w", resourceID, r.Status, models.ErrResourceUnavailable)
	}
	r.Status = models.StatusInUse
	r.Owner = unitID
	l.assignments[unitID] = append(l.assignments[unitID], resourceID)
	return nil
}

// Release returns a resource to the available pool whoever owns it.
// Releasing an available resource is a no-op.
func (l *Ledger) Release(resourceID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releaseLocked(resourceID)
}

func (l *Ledger) releaseLocked(resourceID string) error {
	r, ok := l.resources[resourceID]
	if !ok {
		return fmt.Errorf("ledger: resource %s: %w", resourceID, models.ErrResourceNotFound)
	}
	if r.Owner != "" {
		l.assignments[r.Owner] = removeID(l.assignments[r.Owner], resourceID)
		if len(l.assignments[r.Owner]) == 0 {
			delete(l.assignments, r.Owner)
		}
	}
	r.Owner = ""
	r.Status = models.StatusAvailable
	return nil
}

// ReleaseAll releases every resource owned by unitID and returns their ids.
func (l *Ledger) ReleaseAll(unitID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := append([]string(nil), l.assignments[unitID]...)
	for _, id := range ids {
		_ = l.releaseLocked(id)
	}
	return ids
}

// UpdateStatus changes status and optionally location without touching
// ownership. Owned resources stay in_use; unowned ones cannot become in_use.
func (l *Ledger) UpdateStatus(resourceID string, status models.ResourceStatus, loc *models.Location) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.resources[resourceID]
	if !ok {
		return fmt.Errorf("ledger: resource %s: %w", resourceID, models.ErrResourceNotFound)
	}
	owned := r.Owner != ""
	if owned != (status == models.StatusInUse) {
		return fmt.Errorf("ledger: resource %s cannot move to %s (owner %q): %w",
			resourceID, status, r.Owner, models.ErrInvalidTransition)
	}
	r.Status = status
	if loc != nil {
		r.Location = *loc
	}
	return nil
}

// Assignments returns the resource ids owned by unitID in assignment order.
func (l *Ledger) Assignments(unitID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.assignments[unitID]...)
}

// Query returns copies of every resource matching pred, in ledger order.
func (l *Ledger) Query(pred Predicate) []models.Resource {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Resource
	for _, id := range l.order {
		r := l.resources[id]
		if pred == nil || pred(*r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Counts aggregates resources by kind, sorted by kind.
func (l *Ledger) Counts() []models.ResourceCount {
	l.mu.Lock()
	defer l.mu.Unlock()
	byKind := make(map[string]*models.ResourceCount)
	for _, id := range l.order {
		r := l.resources[id]
		c, ok := byKind[r.Kind]
		if !ok {
			c = &models.ResourceCount{Kind: r.Kind}
			byKind[r.Kind] = c
		}
		c.Total++
		switch r.Status {
		case models.StatusAvailable:
			c.Available++
		case models.StatusInUse:
			c.InUse++
		}
	}
	out := make([]models.ResourceCount, 0, len(byKind))
	for _, c := range byKind {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
