// Package datamanager keeps a read-only projection of the environment and the
// history of every unit. Nothing here is authoritative for resource
// assignment; the environment is.
package datamanager

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shenikar/city_emergency_response/internal/citymap"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
)

// Source is what the manager projects from.
type Source interface {
	InitialState() []models.InitRecord
	ActiveEvents() []*models.EmergencyEvent
	ResourceStatus() environment.ResourceStatus
	TrafficInfo() environment.TrafficInfo
	Now() time.Time
}

// SnapshotCache mirrors the latest snapshot to an external store.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
}

// Snapshot is the denormalized view of the environment.
type Snapshot struct {
	Time        time.Time                `json:"time"`
	Width       int                      `json:"width"`
	Height      int                      `json:"height"`
	Events      []*models.EmergencyEvent `json:"events"`
	Buildings   []models.Building        `json:"buildings"`
	Resources   []models.ResourceCount   `json:"resources"`
	MeanTraffic float64                  `json:"mean_traffic"`
	Congestion  string                   `json:"congestion"`
}

type Manager struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	history   map[string][]models.HistoryEntry
	units     map[string]models.UnitState
	unitOrder []string

	cache  SnapshotCache
	logger *logrus.Logger
}

// New creates an empty manager; cache may be nil.
func New(cache SnapshotCache, logger *logrus.Logger) *Manager {
	return &Manager{
		history: make(map[string][]models.HistoryEntry),
		units:   make(map[string]models.UnitState),
		cache:   cache,
		logger:  logger,
	}
}

// UpdateInit rebuilds the snapshot from the environment's initial-state
// export. Records with a false status are skipped.
func (m *Manager) UpdateInit(records []models.InitRecord) error {
	var s Snapshot
	for i, rec := range records {
		if !rec.Status {
			continue
		}
		switch msg := rec.Message.(type) {
		case models.Building:
			s.Buildings = append(s.Buildings, msg)
		case *models.EmergencyEvent:
			s.Events = append(s.Events, msg.Clone())
		case environment.EnvironmentInfo:
			s.Time = msg.CurrentTime
			s.Width, s.Height = msg.Width, msg.Height
			s.MeanTraffic = msg.MeanTraffic
			s.Resources = append([]models.ResourceCount(nil), msg.Resources...)
		default:
			return fmt.Errorf("datamanager: init record %d of type %s has payload %T", i, rec.Type, rec.Message)
		}
	}
	s.Congestion = citymap.CongestionLabel(s.MeanTraffic)

	m.mu.Lock()
	m.snapshot = s
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"service":   "DataManager",
		"method":    "UpdateInit",
		"buildings": len(s.Buildings),
		"events":    len(s.Events),
	}).Info("Snapshot initialized")
	return nil
}

// Refresh re-reads the parts of the world that change between ticks and
// mirrors the result to the cache. A cache failure is logged, not returned.
func (m *Manager) Refresh(ctx context.Context, src Source) {
	m.mu.RLock()
	empty := len(m.snapshot.Buildings) == 0
	m.mu.RUnlock()
	if empty {
		if err := m.UpdateInit(src.InitialState()); err != nil {
			m.logger.WithError(err).Warn("Failed to initialize snapshot")
		}
	}

	events := src.ActiveEvents()
	status := src.ResourceStatus()
	traffic := src.TrafficInfo()
	now := src.Now()

	m.mu.Lock()
	m.snapshot.Time = now
	m.snapshot.Events = events
	m.snapshot.Resources = status.Counts
	m.snapshot.MeanTraffic = traffic.MeanDensity
	m.snapshot.Congestion = traffic.Congestion
	snap := m.copySnapshotLocked()
	m.mu.Unlock()

	if m.cache == nil {
		return
	}
	if err := m.cache.SaveSnapshot(ctx, &snap); err != nil {
		m.logger.WithFields(logrus.Fields{
			"service": "DataManager",
			"method":  "Refresh",
		}).WithError(err).Warn("Failed to cache snapshot")
	}
}

// Snapshot returns a copy of the current projection.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copySnapshotLocked()
}

func (m *Manager) copySnapshotLocked() Snapshot {
	s := m.snapshot
	s.Events = make([]*models.EmergencyEvent, 0, len(m.snapshot.Events))
	for _, e := range m.snapshot.Events {
		s.Events = append(s.Events, e.Clone())
	}
	s.Buildings = append([]models.Building(nil), m.snapshot.Buildings...)
	s.Resources = append([]models.ResourceCount(nil), m.snapshot.Resources...)
	return s
}

// AppendHistory records one unit activity.
func (m *Manager) AppendHistory(e models.HistoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[e.Unit] = append(m.history[e.Unit], e)
}

// History returns a unit's activity, oldest first; limit <= 0 returns all.
func (m *Manager) History(unit string, limit int) []models.HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.history[unit]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	return append([]models.HistoryEntry(nil), h...)
}

// UpdateUnit stores the latest state of a unit.
func (m *Manager) UpdateUnit(s models.UnitState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[s.Name]; !ok {
		m.unitOrder = append(m.unitOrder, s.Name)
	}
	m.units[s.Name] = s
}

// QueryUnit returns one unit's last known state.
func (m *Manager) QueryUnit(name string) (models.UnitState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.units[name]
	if !ok {
		return models.UnitState{}, fmt.Errorf("datamanager: unit %s: %w", name, models.ErrUnitNotFound)
	}
	return s, nil
}

// QueryUnitList returns every known unit in registration order.
func (m *Manager) QueryUnitList() []models.UnitState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.UnitState, 0, len(m.unitOrder))
	for _, n := range m.unitOrder {
		out = append(out, m.units[n])
	}
	return out
}

// OtherUnits returns every unit except name, sorted by name.
func (m *Manager) OtherUnits(name string) []models.UnitState {
	all := m.QueryUnitList()
	out := all[:0]
	for _, s := range all {
		if s.Name != name {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
