package v1

import (
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/service"
)

// DTOToScenarioRequest преобразует DTO запроса в команду сервиса
func DTOToScenarioRequest(dto StartScenarioRequest) service.ScenarioRequest {
	req := service.ScenarioRequest{
		Type:     dto.Type,
		Floor:    dto.Floor,
		Severity: dto.Severity,
	}
	if dto.Location != nil {
		req.Location = &models.Location{X: dto.Location.X, Y: dto.Location.Y}
	}
	return req
}

func ModelToEventResponse(e *models.EmergencyEvent) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Type:           e.Type,
		Location:       LocationDTO{X: e.Location.X, Y: e.Location.Y},
		Floor:          e.Floor,
		Severity:       string(e.Severity),
		State:          string(e.State),
		Casualties:     e.Casualties,
		AffectedRadius: e.AffectedRadius,
		Properties:     e.Properties,
		StartTime:      e.StartTime,
		ResolvedAt:     e.ResolvedAt,
	}
}

func ModelsToEventResponses(events []*models.EmergencyEvent) []EventResponse {
	responses := make([]EventResponse, len(events))
	for i, e := range events {
		responses[i] = ModelToEventResponse(e)
	}
	return responses
}

func ModelToTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Description:   t.Description,
		Milestones:    t.Milestones,
		Priority:      string(t.Priority),
		Prerequisites: t.Prerequisites,
		Candidates:    t.UnitTypes,
		AssignedUnits: t.AssignedUnits,
		Status:        string(t.Status),
		Attempts:      t.Attempts,
		Reflection:    t.Reflection,
		Summary:       t.Summary,
	}
}

func ModelsToTaskResponses(tasks []*models.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		responses[i] = ModelToTaskResponse(t)
	}
	return responses
}

func ReportToEpochResponse(r *service.EpochReport) EpochResponse {
	counts := make(map[string]int, len(r.Counts))
	for status, n := range r.Counts {
		counts[string(status)] = n
	}
	return EpochResponse{
		RunID:         r.RunID,
		Epoch:         r.Epoch,
		Steps:         r.Steps,
		Counts:        counts,
		EditsApplied:  r.Edits,
		EditsRejected: r.Rejected,
		StepBound:     r.Exhausted,
		Tasks:         ModelsToTaskResponses(r.Tasks),
	}
}

// QueryToFilter собирает фильтр ресурсов из параметров запроса
func QueryToFilter(get func(string) string) ledger.Filter {
	return ledger.Filter{
		Type:   models.ResourceType(get("type")),
		Kind:   get("kind"),
		Role:   get("role"),
		Status: models.ResourceStatus(get("status")),
		Owner:  get("owner"),
		HomeID: get("home"),
	}
}
