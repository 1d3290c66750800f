package taskgraph

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id models.TaskID, p models.Priority, prereqs ...models.TaskID) *models.Task {
	return &models.Task{
		ID:            id,
		Description:   "task",
		Priority:      p,
		Prerequisites: prereqs,
	}
}

// newChain builds 1 <- 2 <- 3.
func newChain(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, tk := range []*models.Task{
		task(1, models.PriorityHigh),
		task(2, models.PriorityHigh, 1),
		task(3, models.PriorityHigh, 2),
	} {
		_, err := g.AddTask(tk)
		require.NoError(t, err)
	}
	return g
}

func finish(t *testing.T, g *Graph, id models.TaskID, success bool) {
	t.Helper()
	require.NoError(t, g.MarkInProgress(id, []string{"unit"}))
	require.NoError(t, g.MarkResult(id, success, "done"))
}

func TestAddTask_SelfCycleRejected(t *testing.T) {
	g := newChain(t)
	before := g.Len()

	_, err := g.AddTask(task(9, models.PriorityLow, 9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCycleDetected))
	assert.Equal(t, before, g.Len())
	_, err = g.Get(9)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestAddTask_Validation(t *testing.T) {
	g := newChain(t)

	_, err := g.AddTask(task(4, models.PriorityLow, 42))
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	_, err = g.AddTask(task(2, models.PriorityLow))
	assert.ErrorIs(t, err, models.ErrInvalidEdit)

	id, err := g.AddTask(&models.Task{Description: "auto"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskID(4), id)

	got, err := g.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, got.Status)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, 1, got.MinimumRequiredUnits)
}

func TestReadySet_PriorityThenID(t *testing.T) {
	g := New()
	for _, tk := range []*models.Task{
		task(1, models.PriorityLow),
		task(2, models.PriorityCritical),
		task(3, models.PriorityCritical, 1),
		task(4, models.PriorityCritical),
		task(5, models.PriorityHigh),
	} {
		_, err := g.AddTask(tk)
		require.NoError(t, err)
	}

	assert.Equal(t, []models.TaskID{2, 4, 5, 1}, ids(g.ReadySet()))

	finish(t, g, 1, true)
	assert.Equal(t, []models.TaskID{2, 3, 4, 5}, ids(g.ReadySet()))

	for _, rt := range g.ReadySet() {
		for _, p := range rt.Prerequisites {
			pt, err := g.Get(p)
			require.NoError(t, err)
			assert.Equal(t, models.TaskSuccess, pt.Status)
		}
	}
}

func TestRefresh_PromotesSatisfied(t *testing.T) {
	g := newChain(t)

	assert.Equal(t, []models.TaskID{1}, g.Refresh())
	finish(t, g, 1, true)
	assert.Equal(t, []models.TaskID{2}, g.Refresh())
	assert.Equal(t, []models.TaskID{2}, ids(g.ReadySet()))
}

func TestStatusTransitions(t *testing.T) {
	g := newChain(t)

	err := g.MarkResult(1, true, "too early")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	err = g.MarkInProgress(2, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	require.NoError(t, g.MarkInProgress(1, []string{"rescue_1"}))
	err = g.MarkInProgress(1, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	require.NoError(t, g.Requeue(1, "dispatch failed"))
	got, _ := g.Get(1)
	assert.Equal(t, models.TaskPending, got.Status)
	assert.Equal(t, []string{"dispatch failed"}, got.Summary)
	assert.Empty(t, got.AssignedUnits)

	require.NoError(t, g.MarkInProgress(1, []string{"rescue_1"}))
	require.NoError(t, g.MarkResult(1, false, "no trucks", "tried twice"))
	got, _ = g.Get(1)
	assert.Equal(t, models.TaskFailure, got.Status)
	assert.Equal(t, "no trucks", got.Reflection)
	assert.Equal(t, 2, got.Attempts)

	err = g.MarkResult(1, true, "again")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.ErrorIs(t, g.MarkResult(99, true, ""), models.ErrTaskNotFound)
}

func TestFailBlocked_Transitive(t *testing.T) {
	g := newChain(t)
	_, err := g.AddTask(task(4, models.PriorityLow))
	require.NoError(t, err)

	finish(t, g, 1, false)
	assert.Equal(t, []models.TaskID{2, 3}, g.FailBlocked())

	got, _ := g.Get(3)
	assert.Equal(t, models.TaskFailure, got.Status)
	assert.Contains(t, got.Reflection, "blocked by failed prerequisite 2")

	assert.False(t, g.Done())
	finish(t, g, 4, true)
	assert.True(t, g.Done())
}

func TestLoad_InitialPlan(t *testing.T) {
	g := New()
	got, err := g.Load([]Subtask{
		{ID: 2, Description: "evacuate", Requires: []int{1}, Priority: models.PriorityCritical},
		{ID: 1, Description: "assess", Candidates: []string{"monitoring_1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.TaskID{2, 1}, got)
	assert.Equal(t, []models.TaskID{1, 2}, g.Order())

	evac, _ := g.Get(2)
	assert.Equal(t, []models.TaskID{1}, evac.Prerequisites)
	assert.Equal(t, models.PriorityCritical, evac.Priority)
	assess, _ := g.Get(1)
	assert.Equal(t, models.PriorityMedium, assess.Priority)
	assert.Equal(t, []string{"monitoring_1"}, assess.UnitTypes)
}

func ids(tasks []*models.Task) []models.TaskID {
	out := make([]models.TaskID, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

// checkAcyclic asserts the graph validates: every prerequisite exists and
// there is no cycle.
func checkAcyclic(t *testing.T, g *Graph) {
	t.Helper()
	g.mu.RLock()
	defer g.mu.RUnlock()
	require.NoError(t, g.validate())
}

func TestRandomEdits_StayAcyclic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := New()
	_, err := g.Load([]Subtask{
		{ID: 1, Description: "a"},
		{ID: 2, Description: "b", Requires: []int{1}},
		{ID: 3, Description: "c", Requires: []int{1}},
		{ID: 4, Description: "d", Requires: []int{2, 3}},
	})
	require.NoError(t, err)

	pick := func() models.TaskID {
		order := g.Order()
		if len(order) == 0 {
			return 0
		}
		return order[rng.Intn(len(order))]
	}

	for i := 0; i < 300; i++ {
		var e Edit
		switch rng.Intn(5) {
		case 0:
			e = Move{OriginID: pick(), NewID: pick()}
		case 1:
			e = Insert{InsertID: pick(), Description: "inserted"}
		case 2:
			e = Delete{DeleteID: pick()}
		case 3:
			e = Decompose{OriginID: pick(), Subtasks: []Subtask{
				{ID: 1, Description: "x"},
				{ID: 2, Description: "y", Requires: []int{rng.Intn(3)}},
			}}
		default:
			e = Replan{OriginID: pick(), Description: "again"}
		}

		before := g.Tasks()
		_, err := g.Apply(i, e)
		if err != nil {
			assert.Equal(t, before, g.Tasks(), "rejected %s must not mutate the graph", e.Kind())
		}
		checkAcyclic(t, g)
	}
}
