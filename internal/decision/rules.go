package decision

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
)

// SeverityResources is the medical bundle per incident severity.
var SeverityResources = map[models.Severity]map[string]int{
	models.SeverityHigh:   {"ambulance": 3, "doctor": 5, "nurse": 10},
	models.SeverityMedium: {"ambulance": 2, "doctor": 3, "nurse": 6},
	models.SeverityLow:    {"ambulance": 1, "doctor": 2, "nurse": 4},
}

// RuleBased is a deterministic Decider that follows fixed response playbooks.
// It is used when no external collaborator is configured and in tests.
type RuleBased struct {
	// MaxReplans bounds how often a failed task is replanned.
	MaxReplans int
}

func NewRuleBased() *RuleBased {
	return &RuleBased{MaxReplans: 1}
}

type playStep struct {
	description string
	milestones  []string
	unit        models.UnitType
	priority    models.Priority
	requires    []int
	resources   func(e *models.EmergencyEvent) map[string]int
}

func medicalBundle(e *models.EmergencyEvent) map[string]int {
	if r, ok := SeverityResources[e.Severity]; ok {
		return copyCounts(r)
	}
	return copyCounts(SeverityResources[models.SeverityMedium])
}

func fixed(r map[string]int) func(*models.EmergencyEvent) map[string]int {
	return func(*models.EmergencyEvent) map[string]int { return copyCounts(r) }
}

// playbooks lists response steps per scenario; requires are step indexes
// starting from 1 within the playbook.
var playbooks = map[string][]playStep{
	"fire": {
		{description: "Assess fire spread and hazards at %s", milestones: []string{"environmental data collected", "spread predicted"}, unit: models.UnitMonitoring, priority: models.PriorityHigh},
		{description: "Suppress the fire at %s", milestones: []string{"fire teams on site", "fire contained"}, unit: models.UnitRescue, priority: models.PriorityCritical, requires: []int{1}, resources: fixed(map[string]int{"fire_truck": 2, "firefighter": 6})},
		{description: "Secure the perimeter around %s", milestones: []string{"perimeter set", "evacuation planned"}, unit: models.UnitSecurity, priority: models.PriorityHigh, requires: []int{1}},
		{description: "Open rescue routes to %s", milestones: []string{"route planned", "traffic controlled"}, unit: models.UnitTraffic, priority: models.PriorityHigh, requires: []int{1}},
		{description: "Treat casualties at %s", milestones: []string{"medical team on site", "casualties triaged"}, unit: models.UnitMedical, priority: models.PriorityHigh, requires: []int{2, 4}, resources: medicalBundle},
	},
	"gas_leak": {
		{description: "Measure gas concentration at %s", milestones: []string{"concentration measured", "risk assessed"}, unit: models.UnitMonitoring, priority: models.PriorityCritical},
		{description: "Evacuate the danger zone around %s", milestones: []string{"perimeter set", "residents evacuated"}, unit: models.UnitSecurity, priority: models.PriorityCritical, requires: []int{1}},
		{description: "Contain the gas leak at %s", milestones: []string{"hazmat team on site", "leak sealed"}, unit: models.UnitRescue, priority: models.PriorityHigh, requires: []int{2}, resources: fixed(map[string]int{"fire_truck": 1, "firefighter": 5, "rescue_equipment": 3})},
		{description: "Stand by medical support at %s", milestones: []string{"medical team on site"}, unit: models.UnitMedical, priority: models.PriorityMedium, requires: []int{2}, resources: medicalBundle},
	},
	"traffic_accident": {
		{description: "Divert traffic around the accident at %s", milestones: []string{"traffic controlled"}, unit: models.UnitTraffic, priority: models.PriorityCritical},
		{description: "Extract trapped people at %s", milestones: []string{"rescue team on site", "people extracted"}, unit: models.UnitRescue, priority: models.PriorityHigh, requires: []int{1}, resources: fixed(map[string]int{"fire_truck": 1, "firefighter": 4})},
		{description: "Treat injured at %s", milestones: []string{"medical team on site", "injured transported"}, unit: models.UnitMedical, priority: models.PriorityHigh, requires: []int{1}, resources: medicalBundle},
	},
	"medical_emergency": {
		{description: "Clear an ambulance route to %s", milestones: []string{"route planned"}, unit: models.UnitTraffic, priority: models.PriorityHigh},
		{description: "Treat patients at %s", milestones: []string{"medical team on site", "patients stabilised"}, unit: models.UnitMedical, priority: models.PriorityCritical, requires: []int{1}, resources: medicalBundle},
	},
}

// Plan chains the playbook of every active event into one subtask list.
func (r *RuleBased) Plan(_ context.Context, req PlanRequest) ([]taskgraph.Subtask, error) {
	var out []taskgraph.Subtask
	offset := 0
	for _, e := range req.Events {
		if !e.IsActive() {
			continue
		}
		steps, ok := playbooks[e.Type]
		if !ok {
			return nil, fmt.Errorf("decision: no playbook for %q: %w", e.Type, models.ErrUnknownScenarioType)
		}
		for i, s := range steps {
			sub := taskgraph.Subtask{
				ID:          offset + i + 1,
				Description: fmt.Sprintf(s.description, e.ID),
				Milestones:  append([]string(nil), s.milestones...),
				Candidates:  []string{string(s.unit)},
				Priority:    s.priority,
			}
			for _, n := range s.requires {
				sub.Requires = append(sub.Requires, offset+n)
			}
			if s.resources != nil {
				sub.RequiredResources = s.resources(e)
			}
			out = append(out, sub)
		}
		offset += len(steps)
	}
	return out, nil
}

// Act runs the fixed script of the unit's specialty against the first event.
func (r *RuleBased) Act(_ context.Context, req ActRequest) (ActResponse, error) {
	event := ""
	if len(req.EventIDs) > 0 {
		event = req.EventIDs[0]
	}
	var needs map[string]int
	if req.Task != nil {
		needs = req.Task.RequiredResources
	}
	onEvent := map[string]any{"event_id": event}

	var calls []models.ActionCall
	add := func(name string, args any) {
		calls = append(calls, call(name, args))
	}
	switch req.UnitType {
	case models.UnitMedical:
		add(models.ActionCreateMedicalPlan, onEvent)
		add(models.ActionOrganizeTeam, map[string]any{"requirements": needs, "event_id": event})
		add(models.ActionDeployResources, onEvent)
	case models.UnitRescue:
		add(models.ActionIdentifyHazard, onEvent)
		add(models.ActionOrganizeTeam, map[string]any{"requirements": needs, "event_id": event})
		add(models.ActionDeployResources, onEvent)
		add(models.ActionCreateRescuePlan, onEvent)
	case models.UnitSecurity:
		add(models.ActionSetSecurityPerimeter, onEvent)
		add(models.ActionDeploySecurityPersonnel, onEvent)
		add(models.ActionCreateEvacuationPlan, nil)
	case models.UnitMonitoring:
		add(models.ActionGetEnvironmentalData, nil)
		add(models.ActionAnalyzeRisk, nil)
		add(models.ActionPredictDisasterSpread, nil)
	case models.UnitTraffic:
		add(models.ActionGetTrafficStatus, nil)
		add(models.ActionPlanRescueRoute, onEvent)
		add(models.ActionImplementTrafficControl, onEvent)
	default:
		return ActResponse{}, fmt.Errorf("decision: unit type %q: %w", req.UnitType, models.ErrActionNotSupported)
	}
	add(models.ActionReportStatus, nil)

	desc := ""
	if req.Task != nil {
		desc = req.Task.Description
	}
	return ActResponse{
		Actions:     calls,
		FinalAnswer: fmt.Sprintf("%s carried out %d actions for: %s", req.Unit, len(calls), desc),
	}, nil
}

// Reflect succeeds when every action of the step succeeded.
func (r *RuleBased) Reflect(_ context.Context, req ReflectRequest) (Reflection, error) {
	ok := 0
	var failed []string
	for _, rec := range req.Detail.ActionList {
		if rec.OK {
			ok++
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", rec.Action.Name, rec.Feedback))
	}
	total := len(req.Detail.ActionList)
	ref := Reflection{
		Summary:    fmt.Sprintf("%s: %d of %d actions succeeded", req.Unit, ok, total),
		TaskStatus: total > 0 && ok == total,
	}
	if ref.TaskStatus {
		ref.Reasoning = "all milestones were addressed by successful actions"
	} else {
		ref.Reasoning = fmt.Sprintf("failed actions: %v", failed)
	}
	return ref, nil
}

// Strategy replans a failed task until it has been tried MaxReplans+1 times.
func (r *RuleBased) Strategy(_ context.Context, req StrategyRequest) (taskgraph.Edit, error) {
	t := req.LastTask
	if t == nil || t.Status != models.TaskFailure || t.Attempts > r.MaxReplans {
		return nil, nil
	}
	return taskgraph.Replan{OriginID: t.ID, Description: t.Description, Milestones: t.Milestones}, nil
}

func call(name string, args any) models.ActionCall {
	c := models.ActionCall{Name: name}
	if args != nil {
		// marshal of maps of plain values cannot fail
		c.Args, _ = json.Marshal(args)
	}
	return c
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
