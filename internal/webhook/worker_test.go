package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/config"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, url string) (*Worker, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	cfg := &config.Config{
		WebhookURL:        url,
		WebhookSecret:     "secret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	return NewWorker(nil, logger, cfg), buf
}

func testEvent(t *testing.T) (TaskEvent, []byte) {
	t.Helper()
	ev := TaskEvent{
		ID:    uuid.New(),
		Type:  EventTaskFinished,
		RunID: uuid.New(),
		Epoch: 1,
		Result: &models.TaskResult{
			TaskID: 3,
			Status: models.TaskSuccess,
		},
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return ev, payload
}

func TestDeliver_SignsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, generateHMACSHA256(body, "secret"), r.Header.Get(SignatureHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got TaskEvent
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, models.TaskID(3), got.Result.TaskID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w, _ := newTestWorker(t, srv.URL)
	ev, payload := testEvent(t)
	assert.True(t, w.Deliver(context.Background(), ev, payload))
}

func TestDeliver_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w, _ := newTestWorker(t, srv.URL)
	ev, payload := testEvent(t)
	assert.True(t, w.Deliver(context.Background(), ev, payload))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliver_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w, buf := newTestWorker(t, srv.URL)
	ev, payload := testEvent(t)
	assert.False(t, w.Deliver(context.Background(), ev, payload))
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, buf.String(), "Failed to deliver webhook after 3 attempts")
}

func TestDeliver_NoURL(t *testing.T) {
	w, buf := newTestWorker(t, "")
	ev, payload := testEvent(t)
	assert.False(t, w.Deliver(context.Background(), ev, payload))
	assert.Contains(t, buf.String(), "Webhook URL is not configured")
}

func TestDeliver_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w, _ := newTestWorker(t, srv.URL)
	w.cfg.WebhookBaseDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	ev, payload := testEvent(t)
	start := time.Now()
	assert.False(t, w.Deliver(ctx, ev, payload))
	assert.Less(t, time.Since(start), time.Minute)
}
