// Package decision is the boundary to the decision-call collaborator: the
// component that turns a structured context into a plan, unit actions,
// reflections and structural edits of the task graph.
//
// Whatever a Decider returns is untrusted. Edits are parsed into the closed
// taskgraph.Edit variants here and validated again by the graph on apply.
package decision

import (
	"context"

	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
)

// Decider is implemented by the rule-based decider and the HTTP client.
type Decider interface {
	// Plan decomposes the current emergency into an initial subtask list.
	Plan(ctx context.Context, req PlanRequest) ([]taskgraph.Subtask, error)
	// Act picks the actions a unit takes for one step of a task.
	Act(ctx context.Context, req ActRequest) (ActResponse, error)
	// Reflect judges whether a step achieved the task.
	Reflect(ctx context.Context, req ReflectRequest) (Reflection, error)
	// Strategy optionally proposes one structural edit after a task result.
	// A nil edit means keep the plan.
	Strategy(ctx context.Context, req StrategyRequest) (taskgraph.Edit, error)
}

// UnitInfo describes a unit available to the plan.
type UnitInfo struct {
	Name string          `json:"name"`
	Type models.UnitType `json:"type"`
}

type PlanRequest struct {
	Events      []*models.EmergencyEvent `json:"events"`
	Units       []UnitInfo               `json:"units"`
	Environment string                   `json:"environment"`
}

type ActRequest struct {
	Unit        string                `json:"unit"`
	UnitType    models.UnitType       `json:"unit_type"`
	Task        *models.Task          `json:"task"`
	Actions     []string              `json:"actions"`
	Environment string                `json:"environment"`
	History     []models.HistoryEntry `json:"history,omitempty"`
	OtherUnits  []models.UnitState    `json:"other_units,omitempty"`
	Knowledge   string                `json:"knowledge,omitempty"`
	EventIDs    []string              `json:"event_ids,omitempty"`
}

// ActResponse lists the actions to run in order and the unit's answer.
type ActResponse struct {
	Actions     []models.ActionCall `json:"actions"`
	FinalAnswer string              `json:"final_answer" validate:"required"`
}

type ReflectRequest struct {
	Unit   string            `json:"unit"`
	Task   *models.Task      `json:"task"`
	Detail models.StepDetail `json:"detail"`
}

// Reflection is the collaborator's judgement of one step.
type Reflection struct {
	Reasoning  string `json:"reasoning"`
	Summary    string `json:"summary" validate:"required"`
	TaskStatus bool   `json:"task_status"`
}

type StrategyRequest struct {
	Epoch       int            `json:"epoch"`
	Tasks       []*models.Task `json:"tasks"`
	LastTask    *models.Task   `json:"last_task"`
	Feedback    string         `json:"feedback"`
	Environment string         `json:"environment"`
}
