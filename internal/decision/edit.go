package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
)

var validate = validator.New()

// StrategyNone means the collaborator keeps the current plan.
const StrategyNone = "none"

// SubtaskWire is a subtask as the collaborator writes it.
type SubtaskWire struct {
	ID                int            `json:"id" validate:"required,min=1"`
	Description       string         `json:"description" validate:"required"`
	Milestones        []string       `json:"milestones"`
	RequiredSubtasks  []int          `json:"required subtasks" validate:"dive,min=1"`
	Candidates        []string       `json:"candidate list"`
	MinimumUnits      int            `json:"minimum required units" validate:"min=0"`
	Priority          string         `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	EstimatedDuration int            `json:"estimated duration" validate:"min=0"`
	RequiredResources map[string]int `json:"required resources" validate:"dive,min=0"`
}

type replanWire struct {
	OriginID    int      `json:"origin-id" validate:"required,min=1"`
	Description string   `json:"description" validate:"required"`
	Milestones  []string `json:"milestones"`
}

type decomposeWire struct {
	OriginID int           `json:"origin-id" validate:"required,min=1"`
	Subtasks []SubtaskWire `json:"subtasks" validate:"required,min=1,dive"`
}

type moveWire struct {
	OriginID int  `json:"origin-id" validate:"required,min=1"`
	NewID    *int `json:"new-id" validate:"required,min=0"`
}

type insertWire struct {
	InsertID    *int     `json:"insert-id" validate:"required,min=0"`
	Description string   `json:"description" validate:"required"`
	Milestones  []string `json:"milestones"`
}

type deleteWire struct {
	DeleteID int `json:"delete-id" validate:"required,min=1"`
}

// ParseEdit decodes a strategy answer into a graph edit. A missing or "none"
// strategy yields a nil edit. Anything malformed wraps ErrInvalidEdit.
func ParseEdit(raw []byte) (taskgraph.Edit, error) {
	var head struct {
		Strategy string `json:"strategy"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decision: decode strategy: %v: %w", err, models.ErrInvalidEdit)
	}

	switch strings.ToLower(strings.TrimSpace(head.Strategy)) {
	case "", StrategyNone:
		return nil, nil
	case string(taskgraph.EditReplan):
		var w replanWire
		if err := decodeValid(raw, &w); err != nil {
			return nil, err
		}
		return taskgraph.Replan{OriginID: models.TaskID(w.OriginID), Description: w.Description, Milestones: w.Milestones}, nil
	case string(taskgraph.EditDecompose):
		var w decomposeWire
		if err := decodeValid(raw, &w); err != nil {
			return nil, err
		}
		return taskgraph.Decompose{OriginID: models.TaskID(w.OriginID), Subtasks: ToSubtasks(w.Subtasks)}, nil
	case string(taskgraph.EditMove):
		var w moveWire
		if err := decodeValid(raw, &w); err != nil {
			return nil, err
		}
		return taskgraph.Move{OriginID: models.TaskID(w.OriginID), NewID: models.TaskID(*w.NewID)}, nil
	case string(taskgraph.EditInsert):
		var w insertWire
		if err := decodeValid(raw, &w); err != nil {
			return nil, err
		}
		return taskgraph.Insert{InsertID: models.TaskID(*w.InsertID), Description: w.Description, Milestones: w.Milestones}, nil
	case string(taskgraph.EditDelete):
		var w deleteWire
		if err := decodeValid(raw, &w); err != nil {
			return nil, err
		}
		return taskgraph.Delete{DeleteID: models.TaskID(w.DeleteID)}, nil
	default:
		return nil, fmt.Errorf("decision: unknown strategy %q: %w", head.Strategy, models.ErrInvalidEdit)
	}
}

// ParseSubtasks decodes a plan answer of the form {"subtasks": [...]}.
func ParseSubtasks(raw []byte) ([]taskgraph.Subtask, error) {
	var w struct {
		Subtasks []SubtaskWire `json:"subtasks" validate:"required,min=1,dive"`
	}
	if err := decodeValid(raw, &w); err != nil {
		return nil, err
	}
	return ToSubtasks(w.Subtasks), nil
}

// ToSubtasks converts wire subtasks to graph subtasks.
func ToSubtasks(ws []SubtaskWire) []taskgraph.Subtask {
	out := make([]taskgraph.Subtask, 0, len(ws))
	for _, w := range ws {
		out = append(out, taskgraph.Subtask{
			ID:                w.ID,
			Description:       w.Description,
			Milestones:        w.Milestones,
			Requires:          w.RequiredSubtasks,
			Candidates:        w.Candidates,
			MinimumUnits:      w.MinimumUnits,
			Priority:          models.Priority(w.Priority),
			EstimatedDuration: w.EstimatedDuration,
			RequiredResources: w.RequiredResources,
		})
	}
	return out
}

func decodeValid(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decision: decode: %v: %w", err, models.ErrInvalidEdit)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("decision: validate: %v: %w", err, models.ErrInvalidEdit)
	}
	return nil
}
