// Package unit implements the response units. A unit asks the decision
// collaborator what to do for a task, runs the chosen actions against the
// environment and reports back.
package unit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shenikar/city_emergency_response/internal/decision"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
)

// World is the part of the environment units act on.
type World interface {
	Assign(resourceID, unitID string) error
	Release(resourceID string) error
	ReleaseUnit(unitID string) []string
	OrganizeTeam(unitID string, requirements map[string]int) (ledger.BundleResult, error)
	Deploy(resourceID, unitID string, to models.Location) (models.Deployment, error)
	QueryResources(f ledger.Filter) []models.Resource
	UnitResources(unitID string) []models.Resource

	Event(id string) (*models.EmergencyEvent, error)
	ActiveEvents() []*models.EmergencyEvent
	Buildings(t models.BuildingType) []models.Building
	NearestBuilding(loc models.Location, t models.BuildingType) (models.Building, float64, error)
	TravelTime(from, to models.Location, speed float64) float64
	RoadsNear(loc models.Location, radius float64) []string
	PopulationAround(center models.Location, radius float64) float64
	Bounds(loc models.Location) models.Location

	GetTrafficInfo() models.Result
	GetEnvironmentalData() models.Result
	SetDangerZone(z environment.DangerZone) models.Result
	DangerZones() []environment.DangerZone
	TrafficInfo() environment.TrafficInfo
	ControlTraffic(roadIDs []string) []string
	EnvironmentalData() environment.EnvironmentalData
}

// Config bounds retries of decision calls.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Briefing is the context a unit receives with a task.
type Briefing struct {
	Environment string
	History     []models.HistoryEntry
	OtherUnits  []models.UnitState
	Knowledge   string
	EventIDs    []string
}

type Unit struct {
	name    string
	typ     models.UnitType
	world   World
	decider decision.Decider
	cfg     Config
	actions map[string]func() Action
	logger  *logrus.Logger

	mu    sync.Mutex
	state models.UnitState
}

// New creates a unit stationed at home.
func New(name string, t models.UnitType, home models.Location, world World, decider decision.Decider, cfg Config, logger *logrus.Logger) (*Unit, error) {
	catalog, ok := catalogs[t]
	if !ok {
		return nil, fmt.Errorf("unit: type %q: %w", t, models.ErrActionNotSupported)
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	return &Unit{
		name:    name,
		typ:     t,
		world:   world,
		decider: decider,
		cfg:     cfg,
		actions: catalog,
		logger:  logger,
		state: models.UnitState{
			Name:     name,
			Type:     t,
			Location: home,
		},
	}, nil
}

func (u *Unit) Name() string          { return u.name }
func (u *Unit) Type() models.UnitType { return u.typ }

// Actions lists the action names this unit understands, sorted.
func (u *Unit) Actions() []string {
	return actionNames(u.actions)
}

// State returns a snapshot including the resources currently held.
func (u *Unit) State() models.UnitState {
	held := u.world.UnitResources(u.name)
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.state
	s.Resources = make([]string, 0, len(held))
	for _, r := range held {
		s.Resources = append(s.Resources, r.ID)
	}
	s.History = append([]string(nil), u.state.History...)
	if u.state.CurrentTask != nil {
		id := *u.state.CurrentTask
		s.CurrentTask = &id
	}
	return s
}

// Assign records the task the unit works on; nil clears it.
func (u *Unit) Assign(task *models.Task) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if task == nil {
		u.state.CurrentTask = nil
		return
	}
	id := task.ID
	u.state.CurrentTask = &id
}

func (u *Unit) moveTo(loc models.Location) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Location = loc
}

func (u *Unit) location() models.Location {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.Location
}

func (u *Unit) remember(line string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.LastAction = line
	u.state.History = append(u.state.History, line)
}

// Execute decodes one action call against the unit's action set and runs it.
// Unknown actions and bad arguments come back as a failed Result.
func (u *Unit) Execute(ctx context.Context, call models.ActionCall) models.Result {
	newAction, ok := u.actions[call.Name]
	if !ok {
		return models.Fail(fmt.Errorf("unit: %s cannot %q: %w", u.typ, call.Name, models.ErrActionNotSupported))
	}
	a := newAction()
	if len(call.Args) > 0 && string(call.Args) != "null" {
		if err := decodeArgs(call.Args, a); err != nil {
			return models.Fail(fmt.Errorf("unit: %s arguments: %w", call.Name, err))
		}
	}
	res := a.Execute(ctx, u)
	u.remember(fmt.Sprintf("%s: %s", call.Name, res.Message))
	return res
}

// Step asks the collaborator for actions on task, runs them and returns the
// final answer with the full trace. The collaborator call is retried up to
// MaxRetries times with a fixed delay; exhausting them wraps ErrDispatchFailure.
func (u *Unit) Step(ctx context.Context, task *models.Task, brief Briefing) (string, models.StepDetail, error) {
	log := u.logger.WithFields(logrus.Fields{
		"service": "Unit",
		"method":  "Step",
		"unit":    u.name,
		"task_id": task.ID,
	})

	input := renderInput(task)
	req := decision.ActRequest{
		Unit:        u.name,
		UnitType:    u.typ,
		Task:        task,
		Actions:     u.Actions(),
		Environment: brief.Environment,
		History:     brief.History,
		OtherUnits:  brief.OtherUnits,
		Knowledge:   brief.Knowledge,
		EventIDs:    brief.EventIDs,
	}

	var resp decision.ActResponse
	err := u.retry(ctx, log, func() error {
		var err error
		resp, err = u.decider.Act(ctx, req)
		return err
	})
	if err != nil {
		return "", models.StepDetail{Input: input}, fmt.Errorf("unit: %s step on task %d: %w", u.name, task.ID, err)
	}

	detail := models.StepDetail{Input: input, FinalAnswer: resp.FinalAnswer}
	for _, call := range resp.Actions {
		if err := ctx.Err(); err != nil {
			return "", detail, fmt.Errorf("unit: %s step on task %d: %w", u.name, task.ID, err)
		}
		res := u.Execute(ctx, call)
		detail.ActionList = append(detail.ActionList, models.ActionRecord{
			Action:   call,
			OK:       res.OK,
			Feedback: res.Message,
		})
	}
	log.WithField("actions", len(detail.ActionList)).Info("Step finished")
	return resp.FinalAnswer, detail, nil
}

// Reflect asks the collaborator whether the step achieved the task, with the
// same retry policy as Step.
func (u *Unit) Reflect(ctx context.Context, task *models.Task, detail models.StepDetail) (decision.Reflection, error) {
	log := u.logger.WithFields(logrus.Fields{
		"service": "Unit",
		"method":  "Reflect",
		"unit":    u.name,
		"task_id": task.ID,
	})
	var ref decision.Reflection
	err := u.retry(ctx, log, func() error {
		var err error
		ref, err = u.decider.Reflect(ctx, decision.ReflectRequest{Unit: u.name, Task: task, Detail: detail})
		return err
	})
	if err != nil {
		return decision.Reflection{}, fmt.Errorf("unit: %s reflect on task %d: %w", u.name, task.ID, err)
	}
	u.remember("reflection: " + ref.Summary)
	return ref, nil
}

// ReleaseAll hands every held resource back to the ledger.
func (u *Unit) ReleaseAll() []string {
	return u.world.ReleaseUnit(u.name)
}

func (u *Unit) retry(ctx context.Context, log *logrus.Entry, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= u.cfg.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		log.WithError(lastErr).Warnf("Decision call failed. Attempt %d of %d", attempt, u.cfg.MaxRetries)
		if attempt == u.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.cfg.RetryDelay):
		}
	}
	if errors.Is(lastErr, models.ErrDispatchFailure) {
		return lastErr
	}
	return fmt.Errorf("%w: %w", models.ErrDispatchFailure, lastErr)
}

func renderInput(task *models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task %d: %s", task.ID, task.Description)
	if len(task.Milestones) > 0 {
		fmt.Fprintf(&b, "\nMilestones: %s", strings.Join(task.Milestones, "; "))
	}
	return b.String()
}
