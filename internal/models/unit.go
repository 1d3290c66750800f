package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UnitType string

const (
	UnitMedical    UnitType = "medical"
	UnitRescue     UnitType = "rescue"
	UnitSecurity   UnitType = "security"
	UnitMonitoring UnitType = "monitoring"
	UnitTraffic    UnitType = "traffic"
)

// UnitTypes lists every response specialty.
var UnitTypes = []UnitType{UnitMedical, UnitRescue, UnitSecurity, UnitMonitoring, UnitTraffic}

// ParseUnitType maps specialty aliases used in plans (fire, police, ...) to a UnitType.
func ParseUnitType(s string) (UnitType, bool) {
	switch s {
	case "medical", "ambulance", "ems":
		return UnitMedical, true
	case "rescue", "fire", "hazmat", "firefighters":
		return UnitRescue, true
	case "security", "police":
		return UnitSecurity, true
	case "monitoring", "monitor":
		return UnitMonitoring, true
	case "traffic":
		return UnitTraffic, true
	}
	return "", false
}

// UnitState is the read model of a response unit.
type UnitState struct {
	Name        string   `json:"name"`
	Type        UnitType `json:"type"`
	Resources   []string `json:"resources"`
	Location    Location `json:"location"`
	LastAction  string   `json:"last_action"`
	CurrentTask *TaskID  `json:"current_task,omitempty"`
	History     []string `json:"history,omitempty"`
}

// ActionCall is one untyped action request produced by the decision collaborator.
type ActionCall struct {
	Name string          `json:"action"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ActionRecord pairs an executed action with its feedback.
type ActionRecord struct {
	Action   ActionCall `json:"action"`
	OK       bool       `json:"ok"`
	Feedback string     `json:"feedback"`
}

// StepDetail is the trace of a single unit step.
type StepDetail struct {
	Input       string         `json:"input"`
	ActionList  []ActionRecord `json:"action_list"`
	FinalAnswer string         `json:"final_answer"`
}

// HistoryEntry is one append-only record of unit activity.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Unit      string    `json:"unit"`
	TaskID    TaskID    `json:"task_id"`
	Task      string    `json:"task"`
	Feedback  string    `json:"feedback"`
	Success   bool      `json:"success"`
}

// RunArtifact is the persisted outcome of one task dispatch, keyed by InputHash.
type RunArtifact struct {
	InputHash   string         `json:"input_hash"`
	RunID       uuid.UUID      `json:"run_id"`
	Unit        string         `json:"unit"`
	TaskID      TaskID         `json:"task_id"`
	Input       string         `json:"input"`
	ActionList  []ActionRecord `json:"action_list"`
	FinalAnswer string         `json:"final_answer"`
	CreatedAt   time.Time      `json:"created_at"`
}
