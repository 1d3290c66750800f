package service

import (
	"context"
	"fmt"
	"os"

	"github.com/shenikar/city_emergency_response/internal/models"
	"gopkg.in/yaml.v3"
)

// ScenarioRequest commands one incident. A nil Location places it in a
// random residential or commercial building.
type ScenarioRequest struct {
	Type     string           `yaml:"type" json:"type" validate:"required"`
	Location *models.Location `yaml:"location,omitempty" json:"location,omitempty"`
	Floor    int              `yaml:"floor" json:"floor" validate:"gte=0"`
	Severity string           `yaml:"severity" json:"severity" validate:"required,oneof=low medium high"`
}

// ScenarioFile lists the incidents started at boot.
type ScenarioFile struct {
	Incidents []ScenarioRequest `yaml:"incidents"`
}

// LoadScenarios reads and validates a scenario file.
func LoadScenarios(path string) ([]ScenarioRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("service: read scenario file: %w", err)
	}
	var f ScenarioFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("service: %s: %w", path, err)
	}
	for i, inc := range f.Incidents {
		if err := validate.Struct(inc); err != nil {
			return nil, fmt.Errorf("service: %s: incident %d: %w", path, i, err)
		}
	}
	return f.Incidents, nil
}

// StartScenarios starts every incident in order and stops at the first failure.
func StartScenarios(ctx context.Context, s ExerciseService, reqs []ScenarioRequest) ([]*models.EmergencyEvent, error) {
	out := make([]*models.EmergencyEvent, 0, len(reqs))
	for _, r := range reqs {
		ev, err := s.StartScenario(ctx, r)
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
	return out, nil
}
