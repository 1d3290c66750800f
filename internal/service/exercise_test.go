package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shenikar/city_emergency_response/internal/config"
	"github.com/shenikar/city_emergency_response/internal/datamanager"
	"github.com/shenikar/city_emergency_response/internal/decision"
	decision_mocks "github.com/shenikar/city_emergency_response/internal/decision/mocks"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/service"
	"github.com/shenikar/city_emergency_response/internal/service/mocks"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
	"github.com/shenikar/city_emergency_response/internal/unit"
	webhook_mocks "github.com/shenikar/city_emergency_response/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testExercise struct {
	svc       service.ExerciseService
	env       *environment.Environment
	store     *mocks.MockArtifactStore
	publisher *webhook_mocks.MockResultPublisher
	logs      *bytes.Buffer
}

func newTestConfig() *config.Config {
	return &config.Config{
		TickMinutes:     5,
		MaxEpochSteps:   50,
		MaxTaskAttempts: 2,
		StepMaxRetries:  2,
		StepRetryDelay:  time.Millisecond,
	}
}

// newTestExercise wires one unit of every specialty around a fire at the
// city centre.
func newTestExercise(t *testing.T, d decision.Decider) *testExercise {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockArtifactStore(ctrl)
	publisher := webhook_mocks.NewMockResultPublisher(ctrl)

	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)

	cfg := newTestConfig()
	env, err := environment.New(environment.Config{
		Width:        1000,
		Height:       1000,
		Seed:         7,
		BundlePolicy: ledger.PolicyPartial,
		Start:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}, logger)
	require.NoError(t, err)
	env.Start()

	var units []*unit.Unit
	for _, typ := range models.UnitTypes {
		u, err := unit.New(string(typ)+"_1", typ, models.Location{X: 200, Y: 200}, env, d,
			unit.Config{MaxRetries: cfg.StepMaxRetries, RetryDelay: cfg.StepRetryDelay}, logger)
		require.NoError(t, err)
		units = append(units, u)
	}

	svc, err := service.NewExerciseService(env, units, d, datamanager.New(nil, logger), store, publisher, cfg, logger)
	require.NoError(t, err)
	return &testExercise{svc: svc, env: env, store: store, publisher: publisher, logs: buf}
}

func (te *testExercise) startFire(t *testing.T) *models.EmergencyEvent {
	t.Helper()
	ev, err := te.svc.StartScenario(context.Background(), service.ScenarioRequest{
		Type:     "fire",
		Location: &models.Location{X: 500, Y: 500},
		Floor:    2,
		Severity: "high",
	})
	require.NoError(t, err)
	return ev
}

func (te *testExercise) heldResources() []models.Resource {
	return te.env.QueryResources(ledger.Filter{Status: models.StatusInUse})
}

func TestStartScenario_Validation(t *testing.T) {
	te := newTestExercise(t, decision.NewRuleBased())

	_, err := te.svc.StartScenario(context.Background(), service.ScenarioRequest{Type: "fire", Severity: "extreme"})
	require.Error(t, err)

	_, err = te.svc.StartScenario(context.Background(), service.ScenarioRequest{Type: "flood", Severity: "low"})
	assert.ErrorIs(t, err, models.ErrUnknownScenarioType)

	ev := te.startFire(t)
	assert.Equal(t, "fire_0", ev.ID)
	assert.Len(t, te.svc.ListEvents(context.Background()), 1)
	assert.Len(t, te.svc.Snapshot(context.Background()).Events, 1)
}

func TestRunEpoch_NoEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := decision_mocks.NewMockDecider(ctrl)
	te := newTestExercise(t, d)

	report, err := te.svc.RunEpoch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Epoch)
	assert.Zero(t, report.Steps)
	assert.Empty(t, te.svc.ListTasks(context.Background()))
	assert.Contains(t, te.logs.String(), "No active incidents")
}

func TestRunEpoch_RuleBasedFire(t *testing.T) {
	te := newTestExercise(t, decision.NewRuleBased())
	te.startFire(t)

	te.store.EXPECT().SaveArtifact(gomock.Any(), gomock.Any()).Return(nil).Times(5)
	te.store.EXPECT().SaveTaskResult(gomock.Any(), gomock.Any()).Return(nil).Times(5)
	te.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(6)

	report, err := te.svc.RunEpoch(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Exhausted)
	assert.Equal(t, 5, report.Steps)
	assert.Equal(t, 5, report.Counts[models.TaskSuccess])
	assert.Zero(t, report.Counts[models.TaskPending])
	assert.Zero(t, report.Counts[models.TaskInProgress])

	// the monitoring assessment runs first; medical waits for rescue and traffic
	tasks := te.svc.ListTasks(context.Background())
	require.Len(t, tasks, 5)
	assert.Equal(t, []string{"monitoring_1"}, tasks[0].AssignedUnits)
	assert.Equal(t, []string{"medical_1"}, tasks[4].AssignedUnits)

	assert.Empty(t, te.heldResources(), "resources are returned at epoch end")
	for _, st := range te.svc.ListUnits(context.Background()) {
		assert.Nil(t, st.CurrentTask)
	}
}

func TestRunEpoch_DispatchFailureRequeuesThenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := decision_mocks.NewMockDecider(ctrl)
	te := newTestExercise(t, d)
	te.startFire(t)

	d.EXPECT().Plan(gomock.Any(), gomock.Any()).Return([]taskgraph.Subtask{
		{ID: 1, Description: "Treat casualties", Candidates: []string{"ambulance"}, MinimumUnits: 1},
	}, nil)
	// two attempts of two retried calls each
	d.EXPECT().Act(gomock.Any(), gomock.Any()).Return(decision.ActResponse{}, errors.New("collaborator down")).Times(4)
	d.EXPECT().Strategy(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req decision.StrategyRequest) (taskgraph.Edit, error) {
			assert.Equal(t, models.TaskFailure, req.LastTask.Status)
			assert.Equal(t, 2, req.LastTask.Attempts)
			return nil, nil
		})
	te.store.EXPECT().SaveTaskResult(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *models.TaskResult) error {
			assert.Equal(t, models.TaskFailure, r.Status)
			assert.Contains(t, r.Reflection, "dispatch failed after 2 attempts")
			return nil
		})
	te.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	report, err := te.svc.RunEpoch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Steps)
	assert.Equal(t, 1, report.Counts[models.TaskFailure])
	assert.Contains(t, te.logs.String(), "Task requeued")
}

func TestRunEpoch_NoMatchingUnitBlocksDependents(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := decision_mocks.NewMockDecider(ctrl)
	te := newTestExercise(t, d)
	te.startFire(t)

	d.EXPECT().Plan(gomock.Any(), gomock.Any()).Return([]taskgraph.Subtask{
		{ID: 1, Description: "Fly a drone", Candidates: []string{"aviation"}},
		{ID: 2, Description: "Map the damage", Requires: []int{1}, Candidates: []string{"monitoring"}},
	}, nil)
	d.EXPECT().Strategy(gomock.Any(), gomock.Any()).Return(nil, nil)
	te.store.EXPECT().SaveTaskResult(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	te.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	report, err := te.svc.RunEpoch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Counts[models.TaskFailure])
	assert.Equal(t, 1, report.Steps)

	tasks := te.svc.ListTasks(context.Background())
	require.Len(t, tasks, 2)
	assert.Contains(t, tasks[1].Reflection, "blocked by failed prerequisite")
}

func TestRunEpoch_RejectsInvalidEdit(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := decision_mocks.NewMockDecider(ctrl)
	te := newTestExercise(t, d)
	te.startFire(t)

	d.EXPECT().Plan(gomock.Any(), gomock.Any()).Return([]taskgraph.Subtask{
		{ID: 1, Description: "Fly a drone", Candidates: []string{"aviation"}},
	}, nil)
	d.EXPECT().Strategy(gomock.Any(), gomock.Any()).Return(taskgraph.Delete{DeleteID: 99}, nil)
	te.store.EXPECT().SaveTaskResult(gomock.Any(), gomock.Any()).Return(nil)
	te.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	report, err := te.svc.RunEpoch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rejected)
	assert.Zero(t, report.Edits)
	assert.Len(t, te.svc.ListTasks(context.Background()), 1)
	assert.Contains(t, te.logs.String(), "Rejected structural edit")
}

func TestRunEpoch_PlanFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := decision_mocks.NewMockDecider(ctrl)
	te := newTestExercise(t, d)
	te.startFire(t)

	errTimeout := errors.New("timeout")
	d.EXPECT().Plan(gomock.Any(), gomock.Any()).Return(nil, errTimeout).Times(2)

	_, err := te.svc.RunEpoch(context.Background())
	assert.ErrorIs(t, err, models.ErrDispatchFailure)
	assert.ErrorIs(t, err, errTimeout)
}

func TestRunEpoch_Cancelled(t *testing.T) {
	te := newTestExercise(t, decision.NewRuleBased())
	te.startFire(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := te.svc.RunEpoch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, te.heldResources())
}

func TestRunEpoch_NilPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockArtifactStore(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	env, err := environment.New(environment.Config{Seed: 1}, logger)
	require.NoError(t, err)
	env.Start()
	d := decision.NewRuleBased()
	u, err := unit.New("traffic_1", models.UnitTraffic, models.Location{}, env, d, unit.Config{}, logger)
	require.NoError(t, err)

	svc, err := service.NewExerciseService(env, []*unit.Unit{u}, d, datamanager.New(nil, logger), store, nil, newTestConfig(), logger)
	require.NoError(t, err)
	_, err = svc.StartScenario(context.Background(), service.ScenarioRequest{Type: "medical_emergency", Severity: "low"})
	require.NoError(t, err)

	store.EXPECT().SaveArtifact(gomock.Any(), gomock.Any()).Return(errors.New("db down")).AnyTimes()
	store.EXPECT().SaveTaskResult(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	report, err := svc.RunEpoch(context.Background())
	require.NoError(t, err)
	// the ambulance route succeeds, patient care has no medical unit
	assert.Equal(t, 1, report.Counts[models.TaskSuccess])
	assert.Equal(t, 1, report.Counts[models.TaskFailure])
}

func TestAdvance(t *testing.T) {
	te := newTestExercise(t, decision.NewRuleBased())
	te.startFire(t)

	_, err := te.svc.Advance(context.Background(), 0)
	require.Error(t, err)

	rep, err := te.svc.Advance(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, rep.Minute)
	assert.Equal(t, rep.CurrentTime, te.svc.Snapshot(context.Background()).Time)
}

func TestResolveEvent(t *testing.T) {
	te := newTestExercise(t, decision.NewRuleBased())
	ev := te.startFire(t)

	require.NoError(t, te.svc.ResolveEvent(context.Background(), ev.ID))
	assert.Empty(t, te.svc.Snapshot(context.Background()).Events)
	assert.ErrorIs(t, te.svc.ResolveEvent(context.Background(), "flood_9"), models.ErrEventNotFound)
}

func TestArtifactLookup(t *testing.T) {
	te := newTestExercise(t, decision.NewRuleBased())
	te.store.EXPECT().GetArtifact(gomock.Any(), "abc").Return(nil, models.ErrArtifactNotFound)

	_, err := te.svc.GetArtifact(context.Background(), "abc")
	assert.ErrorIs(t, err, models.ErrArtifactNotFound)
}

func TestArtifactHash(t *testing.T) {
	a := service.ArtifactHash("medical_1", "Task 1: Treat casualties")
	assert.Len(t, a, 64)
	assert.Equal(t, a, service.ArtifactHash("medical_1", "Task 1: Treat casualties"))
	assert.NotEqual(t, a, service.ArtifactHash("rescue_1", "Task 1: Treat casualties"))
}

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
incidents:
  - type: fire
    location: {x: 500, y: 500}
    floor: 3
    severity: high
  - type: gas_leak
    severity: medium
`), 0o644))

	reqs, err := service.LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, &models.Location{X: 500, Y: 500}, reqs[0].Location)
	assert.Equal(t, 3, reqs[0].Floor)
	assert.Nil(t, reqs[1].Location)

	te := newTestExercise(t, decision.NewRuleBased())
	events, err := service.StartScenarios(context.Background(), te.svc, reqs)
	require.NoError(t, err)
	assert.Equal(t, "gas_leak_1", events[1].ID)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("incidents:\n  - type: fire\n    severity: extreme\n"), 0o644))
	_, err = service.LoadScenarios(bad)
	assert.Error(t, err)

	_, err = service.LoadScenarios(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
