package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/models"
)

// LocationDTO DTO для точки на сетке города
// @Description Point on the city grid
type LocationDTO struct {
	X float64 `json:"x" validate:"gte=0"`
	Y float64 `json:"y" validate:"gte=0"`
}

// StartScenarioRequest DTO для запуска инцидента
// @Description Spawns an incident. Without a location it is placed in a random building.
type StartScenarioRequest struct {
	Type     string       `json:"type" validate:"required,oneof=fire gas_leak traffic_accident medical_emergency"`
	Location *LocationDTO `json:"location,omitempty"`
	Floor    int          `json:"floor" validate:"gte=0,lte=60"`
	Severity string       `json:"severity" validate:"required,oneof=low medium high"`
}

// AdvanceRequest DTO для продвижения модельного времени
// @Description Minutes to advance the simulated clock by
type AdvanceRequest struct {
	Minutes float64 `json:"minutes" validate:"required,gt=0,lte=1440"`
}

// EventResponse DTO для ответа с информацией об инциденте
// @Description Incident state
type EventResponse struct {
	ID             string             `json:"id"`
	Type           string             `json:"type"`
	Location       LocationDTO        `json:"location"`
	Floor          int                `json:"floor"`
	Severity       string             `json:"severity"`
	State          string             `json:"state"`
	Casualties     int                `json:"casualties"`
	AffectedRadius float64            `json:"affected_radius"`
	Properties     map[string]float64 `json:"properties"`
	StartTime      time.Time          `json:"start_time"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
}

// TaskResponse DTO для узла графа задач
// @Description Task graph node
type TaskResponse struct {
	ID            models.TaskID   `json:"id"`
	Description   string          `json:"description"`
	Milestones    []string        `json:"milestones"`
	Priority      string          `json:"priority"`
	Prerequisites []models.TaskID `json:"prerequisites"`
	Candidates    []string        `json:"candidates"`
	AssignedUnits []string        `json:"assigned_units"`
	Status        string          `json:"status"`
	Attempts      int             `json:"attempts"`
	Reflection    string          `json:"reflection,omitempty"`
	Summary       []string        `json:"summary,omitempty"`
}

// EpochResponse DTO для итогов эпохи планирования
// @Description Planning epoch summary
type EpochResponse struct {
	RunID         uuid.UUID      `json:"run_id"`
	Epoch         int            `json:"epoch"`
	Steps         int            `json:"steps"`
	Counts        map[string]int `json:"counts"`
	EditsApplied  int            `json:"edits_applied"`
	EditsRejected int            `json:"edits_rejected"`
	StepBound     bool           `json:"step_bound_reached"`
	Tasks         []TaskResponse `json:"tasks"`
}
