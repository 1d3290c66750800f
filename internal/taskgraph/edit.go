package taskgraph

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shenikar/city_emergency_response/internal/models"
)

type EditKind string

const (
	EditReplan    EditKind = "replan"
	EditDecompose EditKind = "decompose"
	EditMove      EditKind = "move"
	EditInsert    EditKind = "insert"
	EditDelete    EditKind = "delete"
)

// Edit is a structural change of the plan. The set of variants is closed.
type Edit interface {
	Kind() EditKind
	apply(c *Graph) error
}

// Subtask describes a task to create. ID and Requires are local to the list
// the subtask arrives in; the graph assigns real ids.
type Subtask struct {
	ID                int             `json:"id"`
	Description       string          `json:"description"`
	Milestones        []string        `json:"milestones"`
	Requires          []int           `json:"requires,omitempty"`
	Candidates        []string        `json:"candidates,omitempty"`
	MinimumUnits      int             `json:"minimum_units"`
	Priority          models.Priority `json:"priority,omitempty"`
	EstimatedDuration int             `json:"estimated_duration,omitempty"`
	RequiredResources map[string]int  `json:"required_resources,omitempty"`
}

// Replan rewrites the description and milestones of a task that has not
// succeeded and sends it back to pending.
type Replan struct {
	OriginID    models.TaskID `json:"origin_id"`
	Description string        `json:"description"`
	Milestones  []string      `json:"milestones"`
}

// Decompose replaces a task with a connected set of subtasks. Subtasks with
// no local requirements inherit the origin's prerequisites; tasks that
// depended on the origin depend on every subtask nothing else requires.
type Decompose struct {
	OriginID models.TaskID `json:"origin_id"`
	Subtasks []Subtask     `json:"subtasks"`
}

// Move places a task right after NewID in the plan order, or first when
// NewID is zero.
type Move struct {
	OriginID models.TaskID `json:"origin_id"`
	NewID    models.TaskID `json:"new_id"`
}

// Insert adds a task right after InsertID (first when zero). The new task
// requires InsertID and becomes a prerequisite of the task it is placed in
// front of, when that task has not started.
type Insert struct {
	InsertID    models.TaskID `json:"insert_id"`
	Description string        `json:"description"`
	Milestones  []string      `json:"milestones"`
}

// Delete removes a task that nothing depends on.
type Delete struct {
	DeleteID models.TaskID `json:"delete_id"`
}

func (Replan) Kind() EditKind    { return EditReplan }
func (Decompose) Kind() EditKind { return EditDecompose }
func (Move) Kind() EditKind      { return EditMove }
func (Insert) Kind() EditKind    { return EditInsert }
func (Delete) Kind() EditKind    { return EditDelete }

// Apply validates and commits e. Applying the same edit twice in one epoch
// is a no-op that reports applied=false.
func (g *Graph) Apply(epoch int, e Edit) (applied bool, err error) {
	if e == nil {
		return false, fmt.Errorf("taskgraph: nil edit: %w", models.ErrInvalidEdit)
	}
	key, err := editKey(epoch, e)
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.applied[key] {
		return false, nil
	}
	c := g.clone()
	if err := e.apply(c); err != nil {
		return false, err
	}
	if err := c.validate(); err != nil {
		return false, err
	}
	g.commit(c)
	g.applied[key] = true
	return true, nil
}

// Load appends a whole plan in one step, e.g. the initial decomposition.
// Returns the ids assigned to the subtasks, in input order.
func (g *Graph) Load(subtasks []Subtask) ([]models.TaskID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.clone()
	tasks, ids, err := c.materialize(subtasks, nil, models.PriorityMedium)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		c.put(t, len(c.order))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	g.commit(c)
	return ids, nil
}

func editKey(epoch int, e Edit) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("taskgraph: encode edit: %w", err)
	}
	return fmt.Sprintf("%d/%s/%s", epoch, e.Kind(), b), nil
}

func (r Replan) apply(c *Graph) error {
	t, ok := c.tasks[r.OriginID]
	if !ok {
		return fmt.Errorf("taskgraph: replan %d: %w", r.OriginID, models.ErrTaskNotFound)
	}
	if t.Status == models.TaskInProgress || t.Status == models.TaskSuccess {
		return fmt.Errorf("taskgraph: replan %d while %s: %w", r.OriginID, t.Status, models.ErrInvalidEdit)
	}
	if r.Description == "" {
		return fmt.Errorf("taskgraph: replan %d without description: %w", r.OriginID, models.ErrInvalidEdit)
	}
	t.Description = r.Description
	t.Milestones = append([]string(nil), r.Milestones...)
	t.Status = models.TaskPending
	t.Reflection = ""
	t.AssignedUnits = nil
	return nil
}

func (d Decompose) apply(c *Graph) error {
	parent, ok := c.tasks[d.OriginID]
	if !ok {
		return fmt.Errorf("taskgraph: decompose %d: %w", d.OriginID, models.ErrTaskNotFound)
	}
	if parent.Status == models.TaskInProgress || parent.Status == models.TaskSuccess {
		return fmt.Errorf("taskgraph: decompose %d while %s: %w", d.OriginID, parent.Status, models.ErrInvalidEdit)
	}

	tasks, _, err := c.materialize(d.Subtasks, parent, parent.Priority)
	if err != nil {
		return err
	}

	required := make(map[models.TaskID]bool)
	for _, t := range tasks {
		for _, p := range t.Prerequisites {
			required[p] = true
		}
	}
	var sinks []models.TaskID
	for _, t := range tasks {
		if !required[t.ID] {
			sinks = append(sinks, t.ID)
		}
	}

	for _, dep := range c.dependents(d.OriginID) {
		dt := c.tasks[dep]
		prereqs := removeTaskID(dt.Prerequisites, d.OriginID)
		dt.Prerequisites = append(prereqs, sinks...)
	}

	pos := c.position(d.OriginID)
	c.remove(d.OriginID)
	for i, t := range tasks {
		c.put(t, pos+i)
	}
	return nil
}

func (m Move) apply(c *Graph) error {
	t, ok := c.tasks[m.OriginID]
	if !ok {
		return fmt.Errorf("taskgraph: move %d: %w", m.OriginID, models.ErrTaskNotFound)
	}
	if m.NewID == m.OriginID {
		return fmt.Errorf("taskgraph: move %d after itself: %w", m.OriginID, models.ErrInvalidMove)
	}
	if _, ok := c.tasks[m.NewID]; m.NewID != 0 && !ok {
		return fmt.Errorf("taskgraph: move %d after unknown task %d: %w", m.OriginID, m.NewID, models.ErrInvalidMove)
	}

	c.order = removeTaskID(c.order, m.OriginID)
	pos := 0
	if m.NewID != 0 {
		pos = c.position(m.NewID) + 1
	}
	c.order = append(c.order, 0)
	copy(c.order[pos+1:], c.order[pos:])
	c.order[pos] = m.OriginID

	for _, p := range t.Prerequisites {
		if c.position(p) > pos {
			return fmt.Errorf("taskgraph: move %d before its prerequisite %d: %w", m.OriginID, p, models.ErrInvalidMove)
		}
	}
	for _, dep := range c.dependents(m.OriginID) {
		if c.position(dep) < pos {
			return fmt.Errorf("taskgraph: move %d after its dependent %d: %w", m.OriginID, dep, models.ErrInvalidMove)
		}
	}
	return nil
}

func (in Insert) apply(c *Graph) error {
	if in.Description == "" {
		return fmt.Errorf("taskgraph: insert without description: %w", models.ErrInvalidEdit)
	}
	pos := 0
	t := &models.Task{
		ID:                   c.nextID,
		Description:          in.Description,
		Milestones:           append([]string(nil), in.Milestones...),
		Priority:             models.PriorityMedium,
		MinimumRequiredUnits: 1,
		Status:               models.TaskPending,
	}
	if in.InsertID != 0 {
		if _, ok := c.tasks[in.InsertID]; !ok {
			return fmt.Errorf("taskgraph: insert after %d: %w", in.InsertID, models.ErrTaskNotFound)
		}
		pos = c.position(in.InsertID) + 1
		t.Prerequisites = []models.TaskID{in.InsertID}
	}
	if pos < len(c.order) {
		next := c.tasks[c.order[pos]]
		t.Priority = next.Priority
		if next.Status == models.TaskPending || next.Status == models.TaskReady {
			next.Prerequisites = append(next.Prerequisites, t.ID)
			next.Status = models.TaskPending
		}
	}
	c.put(t, pos)
	return nil
}

func (d Delete) apply(c *Graph) error {
	t, ok := c.tasks[d.DeleteID]
	if !ok {
		return fmt.Errorf("taskgraph: delete %d: %w", d.DeleteID, models.ErrTaskNotFound)
	}
	if t.Status == models.TaskInProgress {
		return fmt.Errorf("taskgraph: delete %d while in progress: %w", d.DeleteID, models.ErrInvalidEdit)
	}
	if deps := c.dependents(d.DeleteID); len(deps) > 0 {
		return fmt.Errorf("taskgraph: delete %d required by %v: %w", d.DeleteID, deps, models.ErrTaskHasDependents)
	}
	c.remove(d.DeleteID)
	return nil
}

// materialize turns a subtask list into tasks with fresh ids, sorted so that
// local requirements come first. Roots inherit parent's prerequisites and
// unit types when parent is set.
func (g *Graph) materialize(subtasks []Subtask, parent *models.Task, priority models.Priority) ([]*models.Task, []models.TaskID, error) {
	if len(subtasks) == 0 {
		return nil, nil, fmt.Errorf("taskgraph: empty subtask list: %w", models.ErrInvalidEdit)
	}
	byLocal := make(map[int]Subtask, len(subtasks))
	for _, s := range subtasks {
		if s.ID <= 0 {
			return nil, nil, fmt.Errorf("taskgraph: subtask id %d must be positive: %w", s.ID, models.ErrInvalidEdit)
		}
		if _, dup := byLocal[s.ID]; dup {
			return nil, nil, fmt.Errorf("taskgraph: duplicate subtask id %d: %w", s.ID, models.ErrInvalidEdit)
		}
		if s.Description == "" {
			return nil, nil, fmt.Errorf("taskgraph: subtask %d without description: %w", s.ID, models.ErrInvalidEdit)
		}
		for _, r := range s.Requires {
			if r == s.ID {
				return nil, nil, fmt.Errorf("taskgraph: subtask %d requires itself: %w", s.ID, models.ErrCycleDetected)
			}
		}
		byLocal[s.ID] = s
	}
	for _, s := range subtasks {
		for _, r := range s.Requires {
			if _, ok := byLocal[r]; !ok {
				return nil, nil, fmt.Errorf("taskgraph: subtask %d requires unknown subtask %d: %w", s.ID, r, models.ErrInvalidEdit)
			}
		}
	}

	sorted, err := topoSort(subtasks)
	if err != nil {
		return nil, nil, err
	}

	global := make(map[int]models.TaskID, len(subtasks))
	for _, s := range sorted {
		global[s.ID] = g.nextID
		g.nextID++
	}

	tasks := make([]*models.Task, 0, len(sorted))
	for _, s := range sorted {
		t := &models.Task{
			ID:                   global[s.ID],
			Description:          s.Description,
			Milestones:           append([]string(nil), s.Milestones...),
			Priority:             s.Priority,
			EstimatedDuration:    s.EstimatedDuration,
			UnitTypes:            append([]string(nil), s.Candidates...),
			MinimumRequiredUnits: s.MinimumUnits,
			Status:               models.TaskPending,
		}
		if t.Priority == "" {
			t.Priority = priority
		}
		if t.MinimumRequiredUnits < 1 {
			t.MinimumRequiredUnits = 1
		}
		if len(s.RequiredResources) > 0 {
			t.RequiredResources = make(map[string]int, len(s.RequiredResources))
			for k, v := range s.RequiredResources {
				t.RequiredResources[k] = v
			}
		}
		for _, r := range s.Requires {
			t.Prerequisites = append(t.Prerequisites, global[r])
		}
		if parent != nil {
			if len(s.Requires) == 0 {
				t.Prerequisites = append(t.Prerequisites, parent.Prerequisites...)
			}
			if len(t.UnitTypes) == 0 {
				t.UnitTypes = append([]string(nil), parent.UnitTypes...)
			}
		}
		models.SortTaskIDs(t.Prerequisites)
		tasks = append(tasks, t)
	}

	ids := make([]models.TaskID, 0, len(subtasks))
	for _, s := range subtasks {
		ids = append(ids, global[s.ID])
	}
	return tasks, ids, nil
}

// topoSort orders subtasks so requirements come first, lowest local id first
// among equals.
func topoSort(subtasks []Subtask) ([]Subtask, error) {
	pending := make(map[int]int, len(subtasks))
	users := make(map[int][]int)
	byLocal := make(map[int]Subtask, len(subtasks))
	for _, s := range subtasks {
		byLocal[s.ID] = s
		pending[s.ID] = len(s.Requires)
		for _, r := range s.Requires {
			users[r] = append(users[r], s.ID)
		}
	}

	var queue []int
	for id, n := range pending {
		if n == 0 {
			queue = append(queue, id)
		}
	}
	sort.Ints(queue)

	out := make([]Subtask, 0, len(subtasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, byLocal[id])
		for _, u := range users[id] {
			pending[u]--
			if pending[u] == 0 {
				queue = append(queue, u)
				sort.Ints(queue)
			}
		}
	}
	if len(out) != len(subtasks) {
		return nil, fmt.Errorf("taskgraph: subtasks require each other in a loop: %w", models.ErrCycleDetected)
	}
	return out, nil
}
