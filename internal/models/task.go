package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// TaskID identifies a task within a planning epoch.
type TaskID int

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities: lower rank runs first. Unknown priorities rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskReady      TaskStatus = "ready"
	TaskInProgress TaskStatus = "in_progress"
	TaskSuccess    TaskStatus = "success"
	TaskFailure    TaskStatus = "failure"
)

// Terminal reports whether no further transition is expected.
func (s TaskStatus) Terminal() bool {
	return s == TaskSuccess || s == TaskFailure
}

// Task is one node of the response DAG.
type Task struct {
	ID                   TaskID         `json:"id"`
	Description          string         `json:"description"`
	Milestones           []string       `json:"milestones"`
	Priority             Priority       `json:"priority"`
	EstimatedDuration    int            `json:"estimated_duration"`
	RequiredResources    map[string]int `json:"required_resources,omitempty"`
	Prerequisites        []TaskID       `json:"prerequisites,omitempty"`
	UnitTypes            []string       `json:"unit_types,omitempty"`
	AssignedUnits        []string       `json:"assigned_units,omitempty"`
	MinimumRequiredUnits int            `json:"minimum_required_units"`
	Status               TaskStatus     `json:"status"`
	Summary              []string       `json:"summary,omitempty"`
	Reflection           string         `json:"reflection,omitempty"`
	Attempts             int            `json:"attempts"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Milestones = append([]string(nil), t.Milestones...)
	c.Prerequisites = append([]TaskID(nil), t.Prerequisites...)
	c.UnitTypes = append([]string(nil), t.UnitTypes...)
	c.AssignedUnits = append([]string(nil), t.AssignedUnits...)
	c.Summary = append([]string(nil), t.Summary...)
	if t.RequiredResources != nil {
		c.RequiredResources = make(map[string]int, len(t.RequiredResources))
		for k, v := range t.RequiredResources {
			c.RequiredResources[k] = v
		}
	}
	return &c
}

// HasPrerequisite reports whether id is a direct prerequisite of t.
func (t *Task) HasPrerequisite(id TaskID) bool {
	for _, p := range t.Prerequisites {
		if p == id {
			return true
		}
	}
	return false
}

// SortTaskIDs sorts ids ascending in place.
func SortTaskIDs(ids []TaskID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// TaskResult is the record of one finished task, persisted and published.
type TaskResult struct {
	ID          uuid.UUID  `json:"id"`
	RunID       uuid.UUID  `json:"run_id"`
	Epoch       int        `json:"epoch"`
	TaskID      TaskID     `json:"task_id"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Units       []string   `json:"units"`
	Reflection  string     `json:"reflection"`
	Summary     []string   `json:"summary,omitempty"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}
