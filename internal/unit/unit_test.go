package unit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/city_emergency_response/internal/decision"
	"github.com/shenikar/city_emergency_response/internal/decision/mocks"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fireSite  = models.Location{X: 500, Y: 500}
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func newTestEnv(t *testing.T) (*environment.Environment, *models.EmergencyEvent) {
	t.Helper()
	env, err := environment.New(environment.Config{Width: 1000, Height: 1000, Seed: 7, Start: testStart}, newTestLogger())
	require.NoError(t, err)
	env.Start()
	loc := fireSite
	ev, err := env.InitScenario("fire", &loc, 2, models.SeverityHigh)
	require.NoError(t, err)
	return env, ev
}

func newTestUnit(t *testing.T, name string, typ models.UnitType, env *environment.Environment, d decision.Decider) *Unit {
	t.Helper()
	u, err := New(name, typ, models.Location{X: 200, Y: 200}, env, d, Config{MaxRetries: 3}, newTestLogger())
	require.NoError(t, err)
	return u
}

func args(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestNew_UnknownType(t *testing.T) {
	env, _ := newTestEnv(t)
	_, err := New("w", "weather", models.Location{}, env, nil, Config{}, newTestLogger())
	assert.ErrorIs(t, err, models.ErrActionNotSupported)
}

func TestActions_ClosedPerRole(t *testing.T) {
	env, _ := newTestEnv(t)
	u := newTestUnit(t, "medical_1", models.UnitMedical, env, nil)

	assert.Equal(t, []string{
		models.ActionCreateMedicalPlan, models.ActionDeployResources, models.ActionGetMedicalResources,
		models.ActionOrganizeMedicalTeam, models.ActionOrganizeTeam, models.ActionReleaseResources,
		models.ActionReportStatus,
	}, u.Actions())

	res := u.Execute(context.Background(), models.ActionCall{Name: models.ActionIdentifyHazard})
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, models.ErrActionNotSupported.Error())

	res = u.Execute(context.Background(), models.ActionCall{Name: models.ActionOrganizeTeam, Args: json.RawMessage(`{"requirements":"two"}`)})
	assert.False(t, res.OK)

	res = u.Execute(context.Background(), models.ActionCall{Name: models.ActionOrganizeMedicalTeam, Args: json.RawMessage(`{"severity":"extreme"}`)})
	assert.False(t, res.OK, "severity outside the enum is rejected")
}

func TestRescue_OrganizeDeployRelease(t *testing.T) {
	env, ev := newTestEnv(t)
	u := newTestUnit(t, "rescue_1", models.UnitRescue, env, nil)
	ctx := context.Background()

	res := u.Execute(ctx, models.ActionCall{Name: models.ActionOrganizeRescueTeam, Args: args(t, map[string]string{"event_id": ev.ID})})
	require.True(t, res.OK, res.Message)
	assert.Len(t, env.UnitResources("rescue_1"), 8)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionDeployResources, Args: args(t, map[string]string{"event_id": ev.ID})})
	require.True(t, res.OK, res.Message)
	assert.Len(t, env.Deployments(), 8)
	assert.Equal(t, fireSite, u.State().Location)

	state := u.State()
	assert.Len(t, state.Resources, 8)
	assert.Contains(t, state.LastAction, models.ActionDeployResources)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionReleaseResources, Args: args(t, map[string][]string{"resource_ids": {state.Resources[0]}})})
	require.True(t, res.OK, res.Message)
	assert.Len(t, env.UnitResources("rescue_1"), 7)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionReleaseResources, Args: args(t, map[string][]string{"resource_ids": {"police_1_officer_1"}})})
	assert.False(t, res.OK, "a unit cannot release what it does not hold")

	assert.Len(t, u.ReleaseAll(), 7)
	assert.Empty(t, env.UnitResources("rescue_1"))
}

func TestRescue_HazardAndPlan(t *testing.T) {
	env, ev := newTestEnv(t)
	u := newTestUnit(t, "rescue_1", models.UnitRescue, env, nil)
	ctx := context.Background()

	res := u.Execute(ctx, models.ActionCall{Name: models.ActionIdentifyHazard})
	require.True(t, res.OK, res.Message)
	h := res.Data.(Hazard)
	assert.Equal(t, ev.ID, h.EventID)
	assert.Equal(t, LevelHigh, h.Level)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionCreateRescuePlan, Args: args(t, map[string]string{"event_id": ev.ID})})
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "fire_2", res.Data.(RescuePlan).Station)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionIdentifyHazard, Args: args(t, map[string]string{"event_id": "nope"})})
	assert.False(t, res.OK)
}

func TestGasLevel(t *testing.T) {
	assert.Equal(t, LevelHigh, gasLevel(12))
	assert.Equal(t, LevelMedium, gasLevel(7))
	assert.Equal(t, LevelLow, gasLevel(5))
}

func TestMedical_TeamSizedBySeverity(t *testing.T) {
	env, ev := newTestEnv(t)
	u := newTestUnit(t, "medical_1", models.UnitMedical, env, nil)
	ctx := context.Background()

	res := u.Execute(ctx, models.ActionCall{Name: models.ActionGetMedicalResources})
	require.True(t, res.OK)
	per := res.Data.(map[string]map[string]int)
	assert.Equal(t, 10, per["hospital_1"]["ambulance"])
	assert.Equal(t, 200, per["hospital_1"]["beds"])

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionOrganizeMedicalTeam, Args: args(t, map[string]string{"event_id": ev.ID})})
	require.True(t, res.OK, res.Message)
	assert.Len(t, env.QueryResources(ledger.Filter{Owner: "medical_1", Kind: "nurse"}), 10)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionCreateMedicalPlan})
	require.True(t, res.OK, res.Message)
	plan := res.Data.(MedicalPlan)
	assert.Equal(t, "hospital_2", plan.Hospital)
	assert.Positive(t, plan.ETA)
}

func TestSecurity_PerimeterEvacuationPosts(t *testing.T) {
	env, ev := newTestEnv(t)
	u := newTestUnit(t, "security_1", models.UnitSecurity, env, nil)
	ctx := context.Background()

	res := u.Execute(ctx, models.ActionCall{Name: models.ActionCreateEvacuationPlan})
	assert.False(t, res.OK, "nothing to evacuate before a perimeter exists")

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionSetSecurityPerimeter, Args: args(t, map[string]string{"event_id": ev.ID})})
	require.True(t, res.OK, res.Message)
	zones := env.DangerZones()
	require.Len(t, zones, 1)
	assert.Equal(t, minPerimeter, zones[0].Radius)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionCreateEvacuationPlan})
	require.True(t, res.OK, res.Message)
	routes := res.Data.([]EvacuationRoute)
	require.Len(t, routes, 1)
	assert.Equal(t, models.Location{X: 800, Y: 800}, routes[0].AssemblyPoint)

	res = u.Execute(ctx, models.ActionCall{Name: models.ActionDeploySecurityPersonnel})
	require.True(t, res.OK, res.Message)
	assert.Len(t, res.Data.([]models.Deployment), 8)
	assert.Len(t, env.QueryResources(ledger.Filter{Owner: "security_1", Kind: "officer"}), 8)
}

func TestMonitoringAndTraffic(t *testing.T) {
	env, ev := newTestEnv(t)
	ctx := context.Background()
	mon := newTestUnit(t, "monitoring_1", models.UnitMonitoring, env, nil)
	tr := newTestUnit(t, "traffic_1", models.UnitTraffic, env, nil)

	res := mon.Execute(ctx, models.ActionCall{Name: models.ActionAnalyzeRisk})
	require.True(t, res.OK)
	assert.NotEmpty(t, res.Data.(Risk).Recommendations)

	res = mon.Execute(ctx, models.ActionCall{Name: models.ActionPredictDisasterSpread, Args: args(t, map[string]any{"minutes": 10})})
	require.True(t, res.OK, res.Message)
	fc := res.Data.([]SpreadForecast)
	require.Len(t, fc, 1)
	assert.GreaterOrEqual(t, fc[0].PredictedRadius, fc[0].CurrentRadius)

	res = tr.Execute(ctx, models.ActionCall{Name: models.ActionPlanRescueRoute})
	require.True(t, res.OK, res.Message)
	route := res.Data.(Route)
	assert.Equal(t, ev.Location, route.To)
	assert.Contains(t, route.Roads, "road_x_5")

	res = tr.Execute(ctx, models.ActionCall{Name: models.ActionImplementTrafficControl})
	require.True(t, res.OK, res.Message)
	assert.Contains(t, env.TrafficInfo().ControlledRoads, "road_y_5")

	res = tr.Execute(ctx, models.ActionCall{Name: models.ActionImplementTrafficControl, Args: args(t, map[string][]string{"roads": {"main_street"}})})
	assert.False(t, res.OK)
}

func TestStep_RunsActionsAndRecordsFeedback(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDecider(ctrl)
	env, ev := newTestEnv(t)
	u := newTestUnit(t, "traffic_1", models.UnitTraffic, env, d)
	task := &models.Task{ID: 4, Description: "Open rescue routes", Milestones: []string{"route planned"}}

	d.EXPECT().Act(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req decision.ActRequest) (decision.ActResponse, error) {
		assert.Equal(t, "traffic_1", req.Unit)
		assert.Equal(t, []string{ev.ID}, req.EventIDs)
		assert.Contains(t, req.Actions, models.ActionPlanRescueRoute)
		return decision.ActResponse{
			Actions: []models.ActionCall{
				{Name: models.ActionPlanRescueRoute},
				{Name: models.ActionCreateMedicalPlan},
			},
			FinalAnswer: "route ready",
		}, nil
	})

	answer, detail, err := u.Step(context.Background(), task, Briefing{EventIDs: []string{ev.ID}})
	require.NoError(t, err)
	assert.Equal(t, "route ready", answer)
	assert.Equal(t, "Task 4: Open rescue routes\nMilestones: route planned", detail.Input)
	require.Len(t, detail.ActionList, 2)
	assert.True(t, detail.ActionList[0].OK)
	assert.False(t, detail.ActionList[1].OK)
}

func TestStep_RetriesThenSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDecider(ctrl)
	env, _ := newTestEnv(t)
	u := newTestUnit(t, "monitoring_1", models.UnitMonitoring, env, d)

	gomock.InOrder(
		d.EXPECT().Act(gomock.Any(), gomock.Any()).Return(decision.ActResponse{}, errors.New("timeout")).Times(2),
		d.EXPECT().Act(gomock.Any(), gomock.Any()).Return(decision.ActResponse{FinalAnswer: "ok"}, nil),
	)

	answer, _, err := u.Step(context.Background(), &models.Task{ID: 1}, Briefing{})
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
}

func TestStep_ExhaustedRetriesIsDispatchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDecider(ctrl)
	env, _ := newTestEnv(t)
	u := newTestUnit(t, "monitoring_1", models.UnitMonitoring, env, d)

	errBoom := errors.New("boom")
	d.EXPECT().Act(gomock.Any(), gomock.Any()).Return(decision.ActResponse{}, errBoom).Times(3)

	_, _, err := u.Step(context.Background(), &models.Task{ID: 1}, Briefing{})
	assert.ErrorIs(t, err, models.ErrDispatchFailure)
	assert.ErrorIs(t, err, errBoom)
}

func TestStep_CanceledContextStopsRetrying(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDecider(ctrl)
	env, _ := newTestEnv(t)
	u, err := New("monitoring_1", models.UnitMonitoring, models.Location{}, env, d, Config{MaxRetries: 5, RetryDelay: time.Hour}, newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.EXPECT().Act(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, decision.ActRequest) (decision.ActResponse, error) {
		cancel()
		return decision.ActResponse{}, errors.New("boom")
	})

	_, _, err = u.Step(ctx, &models.Task{ID: 1}, Briefing{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReflect(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDecider(ctrl)
	env, _ := newTestEnv(t)
	u := newTestUnit(t, "medical_1", models.UnitMedical, env, d)

	d.EXPECT().Reflect(gomock.Any(), gomock.Any()).Return(decision.Reflection{Summary: "treated", TaskStatus: true}, nil)

	ref, err := u.Reflect(context.Background(), &models.Task{ID: 2}, models.StepDetail{})
	require.NoError(t, err)
	assert.True(t, ref.TaskStatus)
	assert.Equal(t, "reflection: treated", u.State().LastAction)
}
