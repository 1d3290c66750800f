package environment

import (
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/citymap"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
)

// ResourceStatus is the ledger view returned to units.
type ResourceStatus struct {
	Counts      []models.ResourceCount `json:"counts"`
	Deployments []models.Deployment    `json:"deployments"`
}

// Assign claims one resource for a unit.
func (e *Environment) Assign(resourceID, unitID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.Assign(resourceID, unitID); err != nil {
		return fmt.Errorf("environment: assign: %w", err)
	}
	return nil
}

// Release frees a resource and sends it back to its home building.
func (e *Environment) Release(resourceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.releaseLocked(resourceID)
}

func (e *Environment) releaseLocked(resourceID string) error {
	r, err := e.ledger.Get(resourceID)
	if err != nil {
		return fmt.Errorf("environment: release: %w", err)
	}
	if err := e.ledger.Release(resourceID); err != nil {
		return fmt.Errorf("environment: release: %w", err)
	}
	e.dropDeployment(resourceID)
	if home, ok := e.city.Building(r.HomeID); ok {
		loc := home.Location
		_ = e.ledger.UpdateStatus(resourceID, models.StatusAvailable, &loc)
	}
	return nil
}

// ReleaseUnit frees everything a unit owns and returns the released ids.
func (e *Environment) ReleaseUnit(unitID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.ledger.Assignments(unitID)
	for _, id := range ids {
		if err := e.releaseLocked(id); err != nil {
			e.logger.WithFields(logrus.Fields{
				"service":     "Environment",
				"method":      "ReleaseUnit",
				"unit":        unitID,
				"resource_id": id,
			}).WithError(err).Warn("Failed to release resource")
		}
	}
	return ids
}

// OrganizeTeam allocates a resource bundle to a unit under the ledger's policy.
func (e *Environment) OrganizeTeam(unitID string, requirements map[string]int) (ledger.BundleResult, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service": "Environment",
		"method":  "OrganizeTeam",
		"unit":    unitID,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.ledger.OrganizeTeam(unitID, requirements)
	if err != nil {
		log.WithFields(logrus.Fields{
			"assigned":  len(res.Assigned),
			"requested": res.Requested,
		}).WithError(err).Warn("Resource bundle only partially satisfied")
		return res, fmt.Errorf("environment: organize team: %w", err)
	}
	log.WithField("assigned", len(res.Assigned)).Info("Resource bundle assigned")
	return res, nil
}

// UpdateStatus changes a resource's status and location without touching ownership.
func (e *Environment) UpdateStatus(resourceID string, status models.ResourceStatus, loc *models.Location) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.UpdateStatus(resourceID, status, loc); err != nil {
		return fmt.Errorf("environment: update status: %w", err)
	}
	return nil
}

// Deploy sends a resource owned by unitID towards to. It arrives once the
// simulated clock passes its ETA.
func (e *Environment) Deploy(resourceID, unitID string, to models.Location) (models.Deployment, error) {
	if unitID == "" {
		return models.Deployment{}, fmt.Errorf("environment: deploy %s: %w", resourceID, models.ErrEmptyUnitID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(resourceID)
	if err != nil {
		return models.Deployment{}, fmt.Errorf("environment: deploy: %w", err)
	}
	if r.Owner != unitID {
		return models.Deployment{}, fmt.Errorf("environment: deploy: resource %s is not held by %s: %w",
			resourceID, unitID, models.ErrResourceUnavailable)
	}

	travel := e.city.TravelTime(r.Location, to, SpeedOf(r.Kind))
	d := &models.Deployment{
		ResourceID: resourceID,
		UnitID:     unitID,
		From:       r.Location,
		To:         to,
		TravelTime: travel,
		DepartedAt: e.minute,
		ArrivesAt:  e.minute + travel,
	}
	if _, exists := e.deployments[resourceID]; !exists {
		e.deployOrder = append(e.deployOrder, resourceID)
	}
	e.deployments[resourceID] = d

	e.logger.WithFields(logrus.Fields{
		"service":     "Environment",
		"method":      "Deploy",
		"resource_id": resourceID,
		"unit":        unitID,
		"travel_time": travel,
	}).Info("Resource deployed")
	return *d, nil
}

// Deployments returns every tracked deployment in dispatch order.
func (e *Environment) Deployments() []models.Deployment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Deployment, 0, len(e.deployOrder))
	for _, id := range e.deployOrder {
		out = append(out, *e.deployments[id])
	}
	return out
}

func (e *Environment) dropDeployment(resourceID string) {
	if _, ok := e.deployments[resourceID]; !ok {
		return
	}
	delete(e.deployments, resourceID)
	for i, id := range e.deployOrder {
		if id == resourceID {
			e.deployOrder = append(e.deployOrder[:i], e.deployOrder[i+1:]...)
			break
		}
	}
}

// QueryResources filters the ledger.
func (e *Environment) QueryResources(f ledger.Filter) []models.Resource {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Query(f.Predicate())
}

// UnitResources returns the resources a unit currently holds.
func (e *Environment) UnitResources(unitID string) []models.Resource {
	return e.QueryResources(ledger.Filter{Owner: unitID})
}

// ResourceStatus aggregates the ledger and lists deployments.
func (e *Environment) ResourceStatus() ResourceStatus {
	return ResourceStatus{
		Counts:      e.ledger.Counts(),
		Deployments: e.Deployments(),
	}
}

// Buildings lists buildings of one type, or all of them when t is empty.
func (e *Environment) Buildings(t models.BuildingType) []models.Building {
	if t != "" {
		return e.city.Buildings(t)
	}
	var out []models.Building
	for _, bt := range []models.BuildingType{
		models.BuildingHospital, models.BuildingFireStation, models.BuildingPoliceStation,
		models.BuildingResidential, models.BuildingCommercial,
	} {
		out = append(out, e.city.Buildings(bt)...)
	}
	return out
}

// Building looks up one building.
func (e *Environment) Building(id string) (models.Building, error) {
	b, ok := e.city.Building(id)
	if !ok {
		return models.Building{}, fmt.Errorf("environment: building %s: %w", id, models.ErrBuildingNotFound)
	}
	return b, nil
}

// NearestBuilding returns the closest building of type t with its distance.
func (e *Environment) NearestBuilding(loc models.Location, t models.BuildingType) (models.Building, float64, error) {
	b, d, ok := e.city.NearestBuilding(loc, t)
	if !ok {
		return models.Building{}, 0, fmt.Errorf("environment: no %s near %v: %w", t, loc, models.ErrBuildingNotFound)
	}
	return b, d, nil
}

// TravelTime is the traffic-adjusted travel time in minutes.
func (e *Environment) TravelTime(from, to models.Location, speed float64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.city.TravelTime(from, to, speed)
}

// Event returns one incident.
func (e *Environment) Event(id string) (*models.EmergencyEvent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ev, err := e.events.Get(id)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return ev, nil
}

// Events returns every incident, resolved ones included.
func (e *Environment) Events() []*models.EmergencyEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.events.List()
}

// ActiveEvents returns unresolved incidents.
func (e *Environment) ActiveEvents() []*models.EmergencyEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.events.Active()
}

// ResolveEvent deactivates an incident at the current simulated time.
func (e *Environment) ResolveEvent(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.events.Resolve(id, e.now); err != nil {
		return fmt.Errorf("environment: resolve: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"service":  "Environment",
		"method":   "ResolveEvent",
		"event_id": id,
	}).Info("Event resolved")
	return nil
}

// Vehicle speeds in cells per minute; personnel and equipment ride along at
// the default speed.
var vehicleSpeeds = map[string]float64{
	"ambulance":  60,
	"fire_truck": 45,
	"police_car": 70,
}

// SpeedOf returns the travel speed of a resource kind.
func SpeedOf(kind string) float64 {
	if s, ok := vehicleSpeeds[kind]; ok {
		return s
	}
	return citymap.DefaultSpeed
}
