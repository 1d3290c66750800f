package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/config"
	"github.com/shenikar/city_emergency_response/internal/datamanager"
	"github.com/shenikar/city_emergency_response/internal/decision"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
	"github.com/shenikar/city_emergency_response/internal/unit"
	"github.com/shenikar/city_emergency_response/internal/webhook"
	"github.com/sirupsen/logrus"
)

// ArtifactStore persists step artifacts and task results.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, a *models.RunArtifact) error
	GetArtifact(ctx context.Context, inputHash string) (*models.RunArtifact, error)
	SaveTaskResult(ctx context.Context, r *models.TaskResult) error
	ListTaskResults(ctx context.Context, runID uuid.UUID) ([]*models.TaskResult, error)
}

// ExerciseService drives and observes the exercise.
type ExerciseService interface {
	StartScenario(ctx context.Context, req ScenarioRequest) (*models.EmergencyEvent, error)
	RunEpoch(ctx context.Context) (*EpochReport, error)
	Advance(ctx context.Context, minutes float64) (environment.TickReport, error)
	ResolveEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) []*models.EmergencyEvent
	ListTasks(ctx context.Context) []*models.Task
	ListUnits(ctx context.Context) []models.UnitState
	ListResources(ctx context.Context, f ledger.Filter) []models.Resource
	Snapshot(ctx context.Context) datamanager.Snapshot
	RelevantContext(ctx context.Context, description string) datamanager.RelevantContext
	InitialState(ctx context.Context) []models.InitRecord
	TaskResults(ctx context.Context, runID uuid.UUID) ([]*models.TaskResult, error)
	GetArtifact(ctx context.Context, inputHash string) (*models.RunArtifact, error)
}

// EpochReport summarises one planning epoch.
type EpochReport struct {
	RunID     uuid.UUID                 `json:"run_id"`
	Epoch     int                       `json:"epoch"`
	Steps     int                       `json:"steps"`
	Counts    map[models.TaskStatus]int `json:"counts"`
	Tasks     []*models.Task            `json:"tasks"`
	Edits     int                       `json:"edits_applied"`
	Rejected  int                       `json:"edits_rejected"`
	Exhausted bool                      `json:"step_bound_reached"`
}

var validate = validator.New()

type exerciseService struct {
	env       *environment.Environment
	graph     *taskgraph.Graph
	dm        *datamanager.Manager
	decider   decision.Decider
	units     map[string]*unit.Unit
	unitOrder []string
	store     ArtifactStore
	publisher webhook.ResultPublisher
	cfg       *config.Config
	logger    *logrus.Logger

	// mu serializes epochs, ticks and scenario changes
	mu    sync.Mutex
	epoch int
	runID uuid.UUID
}

// NewExerciseService registers units with the environment and wires the
// controller. publisher may be nil.
func NewExerciseService(
	env *environment.Environment,
	units []*unit.Unit,
	decider decision.Decider,
	dm *datamanager.Manager,
	store ArtifactStore,
	publisher webhook.ResultPublisher,
	cfg *config.Config,
	logger *logrus.Logger,
) (ExerciseService, error) {
	return newExerciseService(env, units, decider, dm, store, publisher, cfg, logger)
}

func newExerciseService(
	env *environment.Environment,
	units []*unit.Unit,
	decider decision.Decider,
	dm *datamanager.Manager,
	store ArtifactStore,
	publisher webhook.ResultPublisher,
	cfg *config.Config,
	logger *logrus.Logger,
) (*exerciseService, error) {
	s := &exerciseService{
		env:       env,
		graph:     taskgraph.New(),
		dm:        dm,
		decider:   decider,
		units:     make(map[string]*unit.Unit, len(units)),
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
	for _, u := range units {
		if err := env.Units().Register(u.Name(), u.Type()); err != nil {
			return nil, fmt.Errorf("service: register unit: %w", err)
		}
		s.units[u.Name()] = u
		s.unitOrder = append(s.unitOrder, u.Name())
		dm.UpdateUnit(u.State())
	}
	if err := dm.UpdateInit(env.InitialState()); err != nil {
		return nil, fmt.Errorf("service: init data manager: %w", err)
	}
	return s, nil
}

// StartScenario spawns an incident.
func (s *exerciseService) StartScenario(ctx context.Context, req ScenarioRequest) (*models.EmergencyEvent, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "Exercise",
		"method":  "StartScenario",
		"type":    req.Type,
	})
	if err := validate.Struct(req); err != nil {
		log.WithError(err).Warn("Invalid scenario")
		return nil, fmt.Errorf("service: invalid scenario: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev, err := s.env.InitScenario(req.Type, req.Location, req.Floor, models.Severity(req.Severity))
	if err != nil {
		log.WithError(err).Error("Failed to start scenario")
		return nil, fmt.Errorf("service: start scenario: %w", err)
	}
	s.dm.Refresh(ctx, s.env)
	log.WithField("event_id", ev.ID).Info("Scenario started")
	return ev, nil
}

// Advance moves the simulated clock outside of an epoch.
func (s *exerciseService) Advance(ctx context.Context, minutes float64) (environment.TickReport, error) {
	if minutes <= 0 {
		return environment.TickReport{}, fmt.Errorf("service: minutes must be positive, got %v", minutes)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rep := s.env.Tick(minutes)
	s.dm.Refresh(ctx, s.env)
	return rep, nil
}

func (s *exerciseService) ResolveEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.env.ResolveEvent(id); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	s.dm.Refresh(ctx, s.env)
	return nil
}

func (s *exerciseService) ListEvents(_ context.Context) []*models.EmergencyEvent {
	return s.env.Events()
}

func (s *exerciseService) ListTasks(_ context.Context) []*models.Task {
	return s.graph.Tasks()
}

func (s *exerciseService) ListUnits(_ context.Context) []models.UnitState {
	return s.dm.QueryUnitList()
}

func (s *exerciseService) ListResources(_ context.Context, f ledger.Filter) []models.Resource {
	return s.env.QueryResources(f)
}

func (s *exerciseService) Snapshot(_ context.Context) datamanager.Snapshot {
	return s.dm.Snapshot()
}

func (s *exerciseService) RelevantContext(_ context.Context, description string) datamanager.RelevantContext {
	return s.dm.QueryRelevantContext(description)
}

func (s *exerciseService) InitialState(_ context.Context) []models.InitRecord {
	return s.env.InitialState()
}

func (s *exerciseService) TaskResults(ctx context.Context, runID uuid.UUID) ([]*models.TaskResult, error) {
	res, err := s.store.ListTaskResults(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("service: list task results: %w", err)
	}
	return res, nil
}

func (s *exerciseService) GetArtifact(ctx context.Context, inputHash string) (*models.RunArtifact, error) {
	a, err := s.store.GetArtifact(ctx, inputHash)
	if err != nil {
		return nil, fmt.Errorf("service: get artifact: %w", err)
	}
	return a, nil
}
