package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/config"
	"github.com/shenikar/city_emergency_response/internal/datamanager"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/service"
	"github.com/shenikar/city_emergency_response/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var apiKey = map[string]string{"X-API-Key": "test-api-key"}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockExerciseService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockExerciseService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, logger, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, router
}

func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestStartScenario_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reqBody := StartScenarioRequest{
		Type:     "fire",
		Location: &LocationDTO{X: 500, Y: 500},
		Floor:    2,
		Severity: "high",
	}
	ev := &models.EmergencyEvent{
		ID:             "fire_0",
		Type:           "fire",
		Location:       models.Location{X: 500, Y: 500},
		Floor:          2,
		Severity:       models.SeverityHigh,
		State:          models.EventActive,
		AffectedRadius: 10,
	}

	mockService.EXPECT().
		StartScenario(gomock.Any(), service.ScenarioRequest{
			Type:     "fire",
			Location: &models.Location{X: 500, Y: 500},
			Floor:    2,
			Severity: "high",
		}).
		Return(ev, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/scenarios", jsonBody(t, reqBody), apiKey)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fire_0", resp.ID)
	assert.Equal(t, "active", resp.State)
	assert.Equal(t, 10.0, resp.AffectedRadius)
}

func TestStartScenario_InvalidJSON(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().StartScenario(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/scenarios", bytes.NewBufferString(`{"type": "fire"`), apiKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestStartScenario_ValidationError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().StartScenario(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/scenarios", jsonBody(t, StartScenarioRequest{Type: "flood", Severity: "high"}), apiKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Type' failed on the 'oneof' tag")
}

func TestStartScenario_Unauthorized(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().StartScenario(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/scenarios", jsonBody(t, StartScenarioRequest{Type: "fire", Severity: "high"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartScenario_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().
		StartScenario(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom")).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/scenarios", jsonBody(t, StartScenarioRequest{Type: "gas_leak", Severity: "low"}), apiKey)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRunEpoch_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	runID := uuid.New()
	report := &service.EpochReport{
		RunID:  runID,
		Epoch:  1,
		Steps:  2,
		Counts: map[models.TaskStatus]int{models.TaskSuccess: 1, models.TaskFailure: 1},
		Tasks: []*models.Task{
			{ID: 1, Description: "Assess fire spread", Status: models.TaskSuccess, UnitTypes: []string{"monitoring"}},
			{ID: 2, Description: "Suppress the fire", Status: models.TaskFailure, Prerequisites: []models.TaskID{1}},
		},
		Rejected: 1,
	}
	mockService.EXPECT().RunEpoch(gomock.Any()).Return(report, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/epochs", nil, apiKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp EpochResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, runID, resp.RunID)
	assert.Equal(t, 1, resp.Counts["success"])
	assert.Equal(t, 1, resp.EditsRejected)
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, []string{"monitoring"}, resp.Tasks[0].Candidates)
	assert.Equal(t, []models.TaskID{1}, resp.Tasks[1].Prerequisites)
}

func TestRunEpoch_CollaboratorDown(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().
		RunEpoch(gomock.Any()).
		Return(nil, fmt.Errorf("service: plan epoch 1: %w", models.ErrDispatchFailure)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/epochs", nil, apiKey)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAdvance(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	now := time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC)
	mockService.EXPECT().
		Advance(gomock.Any(), 15.0).
		Return(environment.TickReport{CurrentTime: now, Minute: 15, ActiveEvents: 1}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/clock/advance", jsonBody(t, AdvanceRequest{Minutes: 15}), apiKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"minute":15`)

	w = makeRequest(router, "POST", "/api/v1/clock/advance", jsonBody(t, AdvanceRequest{Minutes: -1}), apiKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveEvent(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ResolveEvent(gomock.Any(), "fire_0").Return(nil).Times(1)
	mockService.EXPECT().
		ResolveEvent(gomock.Any(), "flood_1").
		Return(fmt.Errorf("service: %w", models.ErrEventNotFound)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/events/fire_0/resolve", nil, apiKey)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = makeRequest(router, "POST", "/api/v1/events/flood_1/resolve", nil, apiKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEndpoints(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ListEvents(gomock.Any()).Return([]*models.EmergencyEvent{{ID: "gas_leak_0", Type: "gas_leak"}})
	mockService.EXPECT().ListTasks(gomock.Any()).Return([]*models.Task{{ID: 1, Status: models.TaskReady}})
	mockService.EXPECT().ListUnits(gomock.Any()).Return([]models.UnitState{{Name: "medical_1", Type: models.UnitMedical}})

	w := makeRequest(router, "GET", "/api/v1/events", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"gas_leak_0"`)

	w = makeRequest(router, "GET", "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	w = makeRequest(router, "GET", "/api/v1/units", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"medical_1"`)
}

func TestListResources_Filter(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().
		ListResources(gomock.Any(), ledger.Filter{Kind: "ambulance", Status: models.StatusAvailable, HomeID: "hospital_1"}).
		Return([]models.Resource{{ID: "hospital_1_ambulance_1", Kind: "ambulance"}}).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/resources?kind=ambulance&status=available&home=hospital_1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hospital_1_ambulance_1")
}

func TestGetContext(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	rc := datamanager.RelevantContext{
		Departments: []datamanager.Department{},
		Events:      []datamanager.EventSummary{},
		Congestion:  "light",
	}
	mockService.EXPECT().RelevantContext(gomock.Any(), "open a route").Return(rc).Times(2)

	w := makeRequest(router, "GET", "/api/v1/context?task=open+a+route", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"traffic":"light"`)

	w = makeRequest(router, "GET", "/api/v1/context?task=open+a+route&format=text", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rc.String(), w.Body.String())
}

func TestSnapshotAndInitialState(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Snapshot(gomock.Any()).Return(datamanager.Snapshot{Width: 1000, Height: 1000, Congestion: "moderate"})
	mockService.EXPECT().InitialState(gomock.Any()).Return([]models.InitRecord{{Type: models.InitEnvironment, Status: true}})

	w := makeRequest(router, "GET", "/api/v1/snapshot", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"moderate"`)

	w = makeRequest(router, "GET", "/api/v1/initial-state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":true`)
}

func TestListResults(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	runID := uuid.New()
	mockService.EXPECT().
		TaskResults(gomock.Any(), runID).
		Return([]*models.TaskResult{{RunID: runID, TaskID: 1, Status: models.TaskSuccess}}, nil).
		Times(1)
	mockService.EXPECT().TaskResults(gomock.Any(), uuid.Nil).Return([]*models.TaskResult{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/runs/"+runID.String()+"/results", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"task_id":1`)

	w = makeRequest(router, "GET", "/api/v1/runs/latest/results", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(router, "GET", "/api/v1/runs/not-a-uuid/results", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetArtifact(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().
		GetArtifact(gomock.Any(), "abc").
		Return(&models.RunArtifact{InputHash: "abc", FinalAnswer: "done"}, nil).
		Times(1)
	mockService.EXPECT().
		GetArtifact(gomock.Any(), "missing").
		Return(nil, fmt.Errorf("service: get artifact: %w", models.ErrArtifactNotFound)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/artifacts/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"final_answer":"done"`)

	w = makeRequest(router, "GET", "/api/v1/artifacts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	router := newAuthRouter()

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	router := newAuthRouter()

	w := makeRequest(router, "GET", "/test", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	router := newAuthRouter()

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}
