package environment

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shenikar/city_emergency_response/internal/citymap"
	"github.com/shenikar/city_emergency_response/internal/incident"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
)

// Config tunes the simulated world.
type Config struct {
	Width        int
	Height       int
	Seed         int64
	TrafficDecay float64
	BundlePolicy ledger.BundlePolicy
	Start        time.Time
}

// TickReport summarises one world step.
type TickReport struct {
	CurrentTime  time.Time              `json:"current_time"`
	Minute       float64                `json:"minute"`
	ActiveEvents int                    `json:"active_events"`
	Available    []models.ResourceCount `json:"available_resources"`
	Arrivals     []string               `json:"arrivals,omitempty"`
}

// Environment owns the city, the resource ledger and the incidents.
// Queries take the read lock; ticks and every mutation of resources take the
// write lock, so a tick never overlaps an assignment.
type Environment struct {
	mu     sync.RWMutex
	cfg    Config
	rng    *rand.Rand
	city   *citymap.CityMap
	ledger *ledger.Ledger
	events *incident.Store
	units  *Registry

	now         time.Time
	minute      float64
	deployments map[string]*models.Deployment
	deployOrder []string
	dangerZones []DangerZone
	controlled  map[string]bool
	wind        Wind

	logger *logrus.Logger
}

// New builds the default city and seeds the ledger from the stock of every
// service building.
func New(cfg Config, logger *logrus.Logger) (*Environment, error) {
	if cfg.Width <= 0 {
		cfg.Width = 1000
	}
	if cfg.Height <= 0 {
		cfg.Height = 1000
	}
	if cfg.TrafficDecay <= 0 || cfg.TrafficDecay > 1 {
		cfg.TrafficDecay = 0.95
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	env := &Environment{
		cfg:         cfg,
		rng:         rng,
		city:        citymap.DefaultCity(cfg.Width, cfg.Height, rng),
		ledger:      ledger.New(cfg.BundlePolicy),
		events:      incident.NewStore(),
		now:         cfg.Start,
		deployments: make(map[string]*models.Deployment),
		controlled:  make(map[string]bool),
		wind:        Wind{Speed: 5, Direction: 90},
		logger:      logger,
	}
	env.units = NewRegistry(env)

	for _, t := range []models.BuildingType{models.BuildingHospital, models.BuildingFireStation, models.BuildingPoliceStation} {
		for _, b := range env.city.Buildings(t) {
			if err := seedResources(env.ledger, b); err != nil {
				return nil, fmt.Errorf("environment: seed %s: %w", b.ID, err)
			}
		}
	}

	logger.WithFields(logrus.Fields{
		"service":   "Environment",
		"method":    "New",
		"width":     cfg.Width,
		"height":    cfg.Height,
		"resources": env.ledger.Len(),
	}).Info("Environment initialized")
	return env, nil
}

// Start opens the unit registry.
func (e *Environment) Start() {
	e.units.Start()
}

// Stop tears down the unit registry, releasing every held resource.
func (e *Environment) Stop() {
	e.units.Stop()
}

// Units returns the unit registry bound to this environment.
func (e *Environment) Units() *Registry {
	return e.units
}

// Ledger exposes the resource ledger for read-only use.
func (e *Environment) Ledger() *ledger.Ledger {
	return e.ledger
}

// Now returns the simulated clock.
func (e *Environment) Now() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.now
}

// Minute returns simulated minutes since start.
func (e *Environment) Minute() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.minute
}

// InitScenario spawns an incident. With loc nil the incident is placed on a
// random residential or commercial building.
func (e *Environment) InitScenario(eventType string, loc *models.Location, floor int, severity models.Severity) (*models.EmergencyEvent, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service":  "Environment",
		"method":   "InitScenario",
		"type":     eventType,
		"severity": severity,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	at := models.Location{}
	if loc != nil {
		at = *loc
	} else {
		candidates := append(e.city.Buildings(models.BuildingResidential), e.city.Buildings(models.BuildingCommercial)...)
		if len(candidates) > 0 {
			b := candidates[e.rng.Intn(len(candidates))]
			at = b.Location
			if floor <= 0 && b.Floors > 0 {
				floor = 1 + e.rng.Intn(b.Floors)
			}
		}
	}

	ev, err := e.events.Spawn(eventType, at, floor, severity, e.now, e.rng)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize scenario")
		return nil, fmt.Errorf("environment: init scenario: %w", err)
	}
	log.WithField("event_id", ev.ID).Info("Scenario initialized")
	return ev, nil
}

// Tick advances the world by elapsed minutes: clock, traffic, incidents and
// in-flight deployments.
func (e *Environment) Tick(elapsed float64) TickReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	if elapsed < 0 {
		elapsed = 0
	}
	e.now = e.now.Add(time.Duration(elapsed * float64(time.Minute)))
	e.minute += elapsed

	e.city.AdvanceTraffic(e.cfg.TrafficDecay, e.rng)
	for id := range e.controlled {
		e.city.ScaleRoadTraffic(id, trafficControlFactor)
	}
	e.events.Tick(elapsed, e.rng)
	e.wind = e.wind.drift(e.rng)

	var arrivals []string
	for _, id := range e.deployOrder {
		d := e.deployments[id]
		if d.Arrived || d.ArrivesAt > e.minute {
			continue
		}
		d.Arrived = true
		to := d.To
		if err := e.ledger.UpdateStatus(id, models.StatusInUse, &to); err != nil {
			e.logger.WithFields(logrus.Fields{
				"service":     "Environment",
				"method":      "Tick",
				"resource_id": id,
			}).WithError(err).Warn("Failed to move arrived resource")
			continue
		}
		arrivals = append(arrivals, id)
	}

	report := TickReport{
		CurrentTime:  e.now,
		Minute:       e.minute,
		ActiveEvents: len(e.events.Active()),
		Available:    e.ledger.Counts(),
		Arrivals:     arrivals,
	}
	e.logger.WithFields(logrus.Fields{
		"service":       "Environment",
		"method":        "Tick",
		"minute":        e.minute,
		"active_events": report.ActiveEvents,
		"arrivals":      len(arrivals),
	}).Debug("Environment updated")
	return report
}

// InitialState exports the bootstrap records consumed by the data manager.
func (e *Environment) InitialState() []models.InitRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []models.InitRecord
	for _, t := range []models.BuildingType{
		models.BuildingHospital, models.BuildingFireStation, models.BuildingPoliceStation,
		models.BuildingResidential, models.BuildingCommercial,
	} {
		for _, b := range e.city.Buildings(t) {
			out = append(out, models.InitRecord{Type: models.InitBuilding, Status: true, Message: b})
		}
	}
	for _, ev := range e.events.List() {
		out = append(out, models.InitRecord{Type: models.InitEvent, Status: true, Message: ev})
	}
	w, h := e.city.Size()
	out = append(out, models.InitRecord{
		Type:   models.InitEnvironment,
		Status: true,
		Message: EnvironmentInfo{
			Width:        w,
			Height:       h,
			CurrentTime:  e.now,
			MeanTraffic:  e.city.MeanTraffic(),
			Resources:    e.ledger.Counts(),
			BundlePolicy: string(e.ledger.Policy()),
		},
	})
	return out
}

// EnvironmentInfo is the environment record of the initial-state export.
type EnvironmentInfo struct {
	Width        int                    `json:"width"`
	Height       int                    `json:"height"`
	CurrentTime  time.Time              `json:"current_time"`
	MeanTraffic  float64                `json:"mean_traffic"`
	Resources    []models.ResourceCount `json:"resources"`
	BundlePolicy string                 `json:"bundle_policy"`
}

// stockKinds maps building stock keys onto individually tracked resources.
var stockKinds = map[string]struct {
	typ  models.ResourceType
	kind string
	prop string
}{
	"ambulances":   {models.ResourceVehicle, "ambulance", models.PropVehicleType},
	"trucks":       {models.ResourceVehicle, "fire_truck", models.PropVehicleType},
	"cars":         {models.ResourceVehicle, "police_car", models.PropVehicleType},
	"doctors":      {models.ResourcePersonnel, "doctor", models.PropRole},
	"nurses":       {models.ResourcePersonnel, "nurse", models.PropRole},
	"firefighters": {models.ResourcePersonnel, "firefighter", models.PropRole},
	"officers":     {models.ResourcePersonnel, "officer", models.PropRole},
}

var equipmentKinds = map[models.BuildingType]string{
	models.BuildingFireStation:   "rescue_equipment",
	models.BuildingPoliceStation: "police_equipment",
}

var skillLevels = []string{"junior", "senior", "expert"}

func seedResources(l *ledger.Ledger, b models.Building) error {
	keys := make([]string, 0, len(b.Stock))
	for k := range b.Stock {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var (
			typ  models.ResourceType
			kind string
			prop string
		)
		if sk, ok := stockKinds[key]; ok {
			typ, kind, prop = sk.typ, sk.kind, sk.prop
		} else if key == "equipment" && equipmentKinds[b.Type] != "" {
			typ, kind, prop = models.ResourceEquipment, equipmentKinds[b.Type], models.PropEquipment
		} else {
			continue
		}

		for i := 0; i < b.Stock[key]; i++ {
			r := models.Resource{
				ID:         fmt.Sprintf("%s_%s_%d", b.ID, kind, i+1),
				Type:       typ,
				Kind:       kind,
				Properties: map[string]string{prop: kind},
				Location:   b.Location,
				HomeID:     b.ID,
			}
			if typ == models.ResourcePersonnel {
				r.Properties[models.PropSkillLevel] = skillLevels[i%len(skillLevels)]
			}
			if err := l.Add(r); err != nil {
				return err
			}
		}
	}
	return nil
}
