// Package taskgraph holds the dependency graph of subtasks for one planning
// epoch.
//
// Every structural change is applied to a clone of the graph, validated for
// missing prerequisites and cycles, and committed only when valid, so a
// rejected edit leaves the graph untouched.
package taskgraph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// Graph is safe for concurrent use.
type Graph struct {
	mu      sync.RWMutex
	tasks   map[models.TaskID]*models.Task
	order   []models.TaskID
	nextID  models.TaskID
	applied map[string]bool
}

func New() *Graph {
	return &Graph{
		tasks:   make(map[models.TaskID]*models.Task),
		nextID:  1,
		applied: make(map[string]bool),
	}
}

// AddTask appends a task to the plan. A zero ID is replaced by the next free
// one; the assigned ID is returned. The task starts pending.
func (g *Graph) AddTask(task *models.Task) (models.TaskID, error) {
	if task == nil {
		return 0, fmt.Errorf("taskgraph: nil task: %w", models.ErrInvalidEdit)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	c := g.clone()
	t := task.Clone()
	if t.ID == 0 {
		t.ID = c.nextID
	}
	if _, exists := c.tasks[t.ID]; exists {
		return 0, fmt.Errorf("taskgraph: task %d already exists: %w", t.ID, models.ErrInvalidEdit)
	}
	t.Status = models.TaskPending
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.MinimumRequiredUnits < 1 {
		t.MinimumRequiredUnits = 1
	}
	c.put(t, len(c.order))

	if err := c.validate(); err != nil {
		return 0, err
	}
	g.commit(c)
	return t.ID, nil
}

// Get returns a copy of one task.
func (g *Graph) Get(id models.TaskID) (*models.Task, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tasks[id]
	if !ok {
		return nil, fmt.Errorf("taskgraph: task %d: %w", id, models.ErrTaskNotFound)
	}
	return t.Clone(), nil
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tasks)
}

// Tasks returns copies of every task in plan order.
func (g *Graph) Tasks() []*models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*models.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id].Clone())
	}
	return out
}

// Order returns task ids in plan order.
func (g *Graph) Order() []models.TaskID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.TaskID(nil), g.order...)
}

// Dependents returns the ids of tasks that list id as a prerequisite, ascending.
func (g *Graph) Dependents(id models.TaskID) []models.TaskID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dependents(id)
}

func (g *Graph) dependents(id models.TaskID) []models.TaskID {
	var out []models.TaskID
	for _, t := range g.tasks {
		if t.HasPrerequisite(id) {
			out = append(out, t.ID)
		}
	}
	models.SortTaskIDs(out)
	return out
}

// ReadySet returns pending or ready tasks whose prerequisites all succeeded,
// by priority (critical first) then ascending id.
func (g *Graph) ReadySet() []*models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*models.Task
	for _, t := range g.tasks {
		if (t.Status == models.TaskPending || t.Status == models.TaskReady) && g.satisfied(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (g *Graph) satisfied(t *models.Task) bool {
	for _, p := range t.Prerequisites {
		if pt, ok := g.tasks[p]; !ok || pt.Status != models.TaskSuccess {
			return false
		}
	}
	return true
}

// Refresh promotes pending tasks with satisfied prerequisites to ready and
// returns their ids.
func (g *Graph) Refresh() []models.TaskID {
	g.mu.Lock()
	defer g.mu.Unlock()
	var promoted []models.TaskID
	for _, t := range g.tasks {
		if t.Status == models.TaskPending && g.satisfied(t) {
			t.Status = models.TaskReady
			promoted = append(promoted, t.ID)
		}
	}
	models.SortTaskIDs(promoted)
	return promoted
}

// Done reports whether no task is pending, ready or in progress.
func (g *Graph) Done() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, t := range g.tasks {
		if !t.Status.Terminal() {
			return false
		}
	}
	return true
}

// Counts tallies tasks by status.
func (g *Graph) Counts() map[models.TaskStatus]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[models.TaskStatus]int)
	for _, t := range g.tasks {
		out[t.Status]++
	}
	return out
}

// MarkInProgress starts a task whose prerequisites have all succeeded.
func (g *Graph) MarkInProgress(id models.TaskID, units []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("taskgraph: task %d: %w", id, models.ErrTaskNotFound)
	}
	if t.Status != models.TaskPending && t.Status != models.TaskReady {
		return fmt.Errorf("taskgraph: task %d is %s: %w", id, t.Status, models.ErrInvalidTransition)
	}
	if !g.satisfied(t) {
		return fmt.Errorf("taskgraph: task %d has unfinished prerequisites: %w", id, models.ErrInvalidTransition)
	}
	t.Status = models.TaskInProgress
	t.AssignedUnits = append([]string(nil), units...)
	t.Attempts++
	return nil
}

// MarkResult finishes an in-progress task.
func (g *Graph) MarkResult(id models.TaskID, success bool, reflection string, summary ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("taskgraph: task %d: %w", id, models.ErrTaskNotFound)
	}
	if t.Status != models.TaskInProgress {
		return fmt.Errorf("taskgraph: task %d is %s: %w", id, t.Status, models.ErrInvalidTransition)
	}
	t.Status = models.TaskFailure
	if success {
		t.Status = models.TaskSuccess
	}
	t.Reflection = reflection
	t.Summary = append(t.Summary, summary...)
	return nil
}

// Requeue sends an in-progress task back to pending for another attempt.
func (g *Graph) Requeue(id models.TaskID, note string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("taskgraph: task %d: %w", id, models.ErrTaskNotFound)
	}
	if t.Status != models.TaskInProgress {
		return fmt.Errorf("taskgraph: task %d is %s: %w", id, t.Status, models.ErrInvalidTransition)
	}
	t.Status = models.TaskPending
	t.AssignedUnits = nil
	if note != "" {
		t.Summary = append(t.Summary, note)
	}
	return nil
}

// FailBlocked fails every waiting task that depends, directly or not, on a
// failed task, and returns their ids. Without it a failed prerequisite would
// keep its dependents pending forever.
func (g *Graph) FailBlocked() []models.TaskID {
	g.mu.Lock()
	defer g.mu.Unlock()
	var failed []models.TaskID
	for changed := true; changed; {
		changed = false
		for _, id := range g.order {
			t := g.tasks[id]
			if t.Status != models.TaskPending && t.Status != models.TaskReady {
				continue
			}
			for _, p := range t.Prerequisites {
				if pt, ok := g.tasks[p]; ok && pt.Status == models.TaskFailure {
					t.Status = models.TaskFailure
					t.Reflection = fmt.Sprintf("blocked by failed prerequisite %d", p)
					failed = append(failed, id)
					changed = true
					break
				}
			}
		}
	}
	models.SortTaskIDs(failed)
	return failed
}

// Reset drops every task, starting a new epoch from scratch.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tasks = make(map[models.TaskID]*models.Task)
	g.order = nil
	g.nextID = 1
	g.applied = make(map[string]bool)
}

// clone deep-copies the structure. The applied set is not copied; it is
// updated on g directly after a successful commit.
func (g *Graph) clone() *Graph {
	c := &Graph{
		tasks:  make(map[models.TaskID]*models.Task, len(g.tasks)),
		order:  append([]models.TaskID(nil), g.order...),
		nextID: g.nextID,
	}
	for id, t := range g.tasks {
		c.tasks[id] = t.Clone()
	}
	return c
}

func (g *Graph) commit(c *Graph) {
	g.tasks = c.tasks
	g.order = c.order
	g.nextID = c.nextID
}

// put stores t at position pos of the plan order.
func (g *Graph) put(t *models.Task, pos int) {
	g.tasks[t.ID] = t
	if pos < 0 {
		pos = 0
	}
	if pos > len(g.order) {
		pos = len(g.order)
	}
	g.order = append(g.order, 0)
	copy(g.order[pos+1:], g.order[pos:])
	g.order[pos] = t.ID
	if t.ID >= g.nextID {
		g.nextID = t.ID + 1
	}
}

func (g *Graph) remove(id models.TaskID) {
	delete(g.tasks, id)
	g.order = removeTaskID(g.order, id)
}

func (g *Graph) position(id models.TaskID) int {
	for i, v := range g.order {
		if v == id {
			return i
		}
	}
	return -1
}

func removeTaskID(ids []models.TaskID, id models.TaskID) []models.TaskID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
