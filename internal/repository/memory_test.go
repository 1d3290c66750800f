package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Artifacts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetArtifact(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrArtifactNotFound)

	a := &models.RunArtifact{
		InputHash: "h1",
		Unit:      "rescue_1",
		TaskID:    2,
		Input:     "Task 2: Suppress the fire",
		ActionList: []models.ActionRecord{
			{Action: models.ActionCall{Name: models.ActionIdentifyHazard}, OK: true, Feedback: "Hazard identified"},
		},
		FinalAnswer: "done",
	}
	require.NoError(t, store.SaveArtifact(ctx, a))
	a.ActionList[0].Feedback = "changed after save"

	got, err := store.GetArtifact(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "Hazard identified", got.ActionList[0].Feedback)

	// same input keeps the latest outcome
	require.NoError(t, store.SaveArtifact(ctx, &models.RunArtifact{InputHash: "h1", FinalAnswer: "again"}))
	got, err = store.GetArtifact(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "again", got.FinalAnswer)
}

func TestMemoryStore_TaskResults(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	run1, run2 := uuid.New(), uuid.New()
	now := time.Now().UTC()

	for i, run := range []uuid.UUID{run1, run2, run1} {
		require.NoError(t, store.SaveTaskResult(ctx, &models.TaskResult{
			ID:        uuid.New(),
			RunID:     run,
			TaskID:    models.TaskID(i + 1),
			Status:    models.TaskSuccess,
			CreatedAt: now,
		}))
	}

	res, err := store.ListTaskResults(ctx, run1)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, models.TaskID(1), res[0].TaskID)
	assert.Equal(t, models.TaskID(3), res[1].TaskID)

	all, err := store.ListTaskResults(ctx, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.TaskID(3), all[0].TaskID)

	none, err := store.ListTaskResults(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
