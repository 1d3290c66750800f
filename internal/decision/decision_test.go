package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEdit_Variants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want taskgraph.Edit
	}{
		{
			name: "replan",
			raw:  `{"strategy":"replan","origin-id":3,"description":"use ladder trucks","milestones":["ladders up"]}`,
			want: taskgraph.Replan{OriginID: 3, Description: "use ladder trucks", Milestones: []string{"ladders up"}},
		},
		{
			name: "decompose",
			raw: `{"strategy":"decompose","origin-id":2,"subtasks":[
				{"id":1,"description":"stage","milestones":["staged"]},
				{"id":2,"description":"attack","required subtasks":[1],"candidate list":["rescue_1"],"minimum required units":2}]}`,
			want: taskgraph.Decompose{OriginID: 2, Subtasks: []taskgraph.Subtask{
				{ID: 1, Description: "stage", Milestones: []string{"staged"}},
				{ID: 2, Description: "attack", Requires: []int{1}, Candidates: []string{"rescue_1"}, MinimumUnits: 2},
			}},
		},
		{
			name: "move to front",
			raw:  `{"strategy":"move","origin-id":4,"new-id":0}`,
			want: taskgraph.Move{OriginID: 4, NewID: 0},
		},
		{
			name: "insert",
			raw:  `{"strategy":"insert","insert-id":1,"description":"close roads"}`,
			want: taskgraph.Insert{InsertID: 1, Description: "close roads"},
		},
		{
			name: "delete",
			raw:  `{"strategy":"DELETE","delete-id":5}`,
			want: taskgraph.Delete{DeleteID: 5},
		},
		{
			name: "none",
			raw:  `{"strategy":"none"}`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEdit([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEdit_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":             `strategy: move`,
		"unknown strategy":     `{"strategy":"teleport","origin-id":1}`,
		"move without new-id":  `{"strategy":"move","origin-id":1}`,
		"replan without desc":  `{"strategy":"replan","origin-id":1}`,
		"delete zero":          `{"strategy":"delete","delete-id":0}`,
		"decompose empty":      `{"strategy":"decompose","origin-id":1,"subtasks":[]}`,
		"bad subtask priority": `{"strategy":"decompose","origin-id":1,"subtasks":[{"id":1,"description":"a","priority":"urgent"}]}`,
		"negative insert-id":   `{"strategy":"insert","insert-id":-1,"description":"a"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEdit([]byte(raw))
			assert.ErrorIs(t, err, models.ErrInvalidEdit)
		})
	}
}

func fireEvent() *models.EmergencyEvent {
	return &models.EmergencyEvent{ID: "fire_0", Type: "fire", Severity: models.SeverityHigh, State: models.EventActive}
}

func TestRuleBased_PlanChainsPlaybooks(t *testing.T) {
	r := NewRuleBased()
	gas := &models.EmergencyEvent{ID: "gas_leak_1", Type: "gas_leak", Severity: models.SeverityLow, State: models.EventSpawned}

	subs, err := r.Plan(context.Background(), PlanRequest{Events: []*models.EmergencyEvent{fireEvent(), gas}})
	require.NoError(t, err)
	require.Len(t, subs, 9)

	assert.Equal(t, []int{2, 4}, subs[4].Requires)
	assert.Equal(t, map[string]int{"ambulance": 3, "doctor": 5, "nurse": 10}, subs[4].RequiredResources)
	assert.Equal(t, 6, subs[5].ID)
	assert.Equal(t, []int{7}, subs[7].Requires)
	assert.Equal(t, map[string]int{"ambulance": 1, "doctor": 2, "nurse": 4}, subs[8].RequiredResources)
	assert.Contains(t, subs[0].Description, "fire_0")

	g := taskgraph.New()
	_, err = g.Load(subs)
	require.NoError(t, err)

	_, err = r.Plan(context.Background(), PlanRequest{Events: []*models.EmergencyEvent{{ID: "x", Type: "flood"}}})
	assert.ErrorIs(t, err, models.ErrUnknownScenarioType)
}

func TestRuleBased_ActPerSpecialty(t *testing.T) {
	r := NewRuleBased()
	task := &models.Task{ID: 2, Description: "Suppress", RequiredResources: map[string]int{"fire_truck": 2}}

	resp, err := r.Act(context.Background(), ActRequest{Unit: "rescue_1", UnitType: models.UnitRescue, Task: task, EventIDs: []string{"fire_0"}})
	require.NoError(t, err)
	names := make([]string, 0, len(resp.Actions))
	for _, a := range resp.Actions {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{
		models.ActionIdentifyHazard, models.ActionOrganizeTeam, models.ActionDeployResources,
		models.ActionCreateRescuePlan, models.ActionReportStatus,
	}, names)

	var args struct {
		Requirements map[string]int `json:"requirements"`
		EventID      string         `json:"event_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Actions[1].Args, &args))
	assert.Equal(t, map[string]int{"fire_truck": 2}, args.Requirements)
	assert.Equal(t, "fire_0", args.EventID)
	assert.Empty(t, resp.Actions[4].Args)

	_, err = r.Act(context.Background(), ActRequest{UnitType: "weather"})
	assert.ErrorIs(t, err, models.ErrActionNotSupported)
}

func TestRuleBased_ReflectAndStrategy(t *testing.T) {
	r := NewRuleBased()
	ctx := context.Background()

	ref, err := r.Reflect(ctx, ReflectRequest{Unit: "medical_1", Detail: models.StepDetail{ActionList: []models.ActionRecord{
		{Action: models.ActionCall{Name: "a"}, OK: true},
		{Action: models.ActionCall{Name: "b"}, OK: false, Feedback: "no ambulances"},
	}}})
	require.NoError(t, err)
	assert.False(t, ref.TaskStatus)
	assert.Contains(t, ref.Reasoning, "no ambulances")

	ref, err = r.Reflect(ctx, ReflectRequest{Unit: "medical_1"})
	require.NoError(t, err)
	assert.False(t, ref.TaskStatus, "an empty step achieves nothing")

	failed := &models.Task{ID: 4, Description: "treat", Status: models.TaskFailure, Attempts: 1}
	edit, err := r.Strategy(ctx, StrategyRequest{LastTask: failed})
	require.NoError(t, err)
	assert.Equal(t, taskgraph.Replan{OriginID: 4, Description: "treat"}, edit)

	failed.Attempts = 2
	edit, err = r.Strategy(ctx, StrategyRequest{LastTask: failed})
	require.NoError(t, err)
	assert.Nil(t, edit)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewHTTPClient(srv.URL+"/", "s3cret", time.Second, logger)
}

func TestHTTPClient_SignsAndParses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, Sign(body, "s3cret"), r.Header.Get(SignatureHeader))
		assert.Equal(t, http.MethodPost, r.Method)

		switch r.URL.Path {
		case "/strategy":
			_, _ = w.Write([]byte(`{"strategy":"delete","delete-id":7}`))
		case "/reflect":
			_, _ = w.Write([]byte(`{"reasoning":"ok","summary":"done","task_status":true}`))
		case "/plan":
			_, _ = w.Write([]byte(`{"subtasks":[{"id":1,"description":"assess"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	edit, err := c.Strategy(ctx, StrategyRequest{Epoch: 1})
	require.NoError(t, err)
	assert.Equal(t, taskgraph.Delete{DeleteID: 7}, edit)

	ref, err := c.Reflect(ctx, ReflectRequest{Unit: "u"})
	require.NoError(t, err)
	assert.True(t, ref.TaskStatus)

	subs, err := c.Plan(ctx, PlanRequest{})
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = c.Act(ctx, ActRequest{})
	assert.ErrorIs(t, err, models.ErrDispatchFailure)
}

func TestHTTPClient_RejectsInvalidAnswers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/strategy":
			_, _ = w.Write([]byte(`{"strategy":"move","origin-id":2}`))
		case "/act":
			_, _ = w.Write([]byte(`{"actions":[]}`))
		}
	})
	ctx := context.Background()

	_, err := c.Strategy(ctx, StrategyRequest{})
	assert.ErrorIs(t, err, models.ErrInvalidEdit)

	_, err = c.Act(ctx, ActRequest{})
	assert.Error(t, err)
}
