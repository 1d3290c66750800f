package unit

import (
	"context"
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/models"
)

// Hazard and risk levels.
const (
	LevelLow    = "LOW"
	LevelMedium = "MEDIUM"
	LevelHigh   = "HIGH"
)

func gasLevel(concentration float64) string {
	switch {
	case concentration > 10:
		return LevelHigh
	case concentration > 5:
		return LevelMedium
	}
	return LevelLow
}

// rescueBundles is the default rescue team per scenario type.
var rescueBundles = map[string]map[string]int{
	"fire":     {"fire_truck": 2, "firefighter": 6},
	"gas_leak": {"fire_truck": 1, "firefighter": 5, "rescue_equipment": 3},
}

var defaultRescueBundle = map[string]int{"fire_truck": 1, "firefighter": 4}

// Hazard describes what a rescue team faces at an incident.
type Hazard struct {
	EventID     string   `json:"event_id"`
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	Floor       int      `json:"floor"`
	Radius      float64  `json:"affected_radius"`
	Precautions []string `json:"precautions"`
}

// IdentifyHazard classifies an incident for the rescue team.
type IdentifyHazard struct {
	EventID string `json:"event_id"`
}

func (a *IdentifyHazard) Name() string { return models.ActionIdentifyHazard }

func (a *IdentifyHazard) Execute(_ context.Context, u *Unit) models.Result {
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	h := Hazard{
		EventID: ev.ID,
		Type:    ev.Type,
		Level:   gasLevel(ev.Properties["gas_concentration"]),
		Floor:   ev.Floor,
		Radius:  ev.AffectedRadius,
	}
	if ev.Properties["temperature"] > 600 || ev.Severity == models.SeverityHigh {
		h.Level = LevelHigh
	}
	if ev.Properties["gas_concentration"] > 0 {
		h.Precautions = append(h.Precautions, "breathing apparatus", "no ignition sources")
	}
	if ev.Properties["smoke_level"] > 0.7 {
		h.Precautions = append(h.Precautions, "thermal imaging")
	}
	if ev.Floor > 3 {
		h.Precautions = append(h.Precautions, "aerial ladder")
	}
	return models.Ok(h, fmt.Sprintf("Hazard at %s is %s", ev.ID, h.Level))
}

// OrganizeRescueTeam claims a rescue bundle sized for the incident type.
type OrganizeRescueTeam struct {
	EventID      string         `json:"event_id"`
	Requirements map[string]int `json:"requirements" validate:"dive,min=0"`
}

func (a *OrganizeRescueTeam) Name() string { return models.ActionOrganizeRescueTeam }

func (a *OrganizeRescueTeam) Execute(_ context.Context, u *Unit) models.Result {
	if len(a.Requirements) > 0 {
		return u.organize(a.Requirements)
	}
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	bundle, ok := rescueBundles[ev.Type]
	if !ok {
		bundle = defaultRescueBundle
	}
	return u.organize(bundle)
}

// RescuePlan is the approach of a rescue team to one incident.
type RescuePlan struct {
	EventID  string  `json:"event_id"`
	Station  string  `json:"station"`
	ETA      float64 `json:"eta_minutes"`
	Floor    int     `json:"entry_floor"`
	Approach string  `json:"approach"`
}

// CreateRescuePlan picks the dispatching fire station and an approach.
type CreateRescuePlan struct {
	EventID string `json:"event_id"`
}

func (a *CreateRescuePlan) Name() string { return models.ActionCreateRescuePlan }

func (a *CreateRescuePlan) Execute(_ context.Context, u *Unit) models.Result {
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	st, _, err := u.world.NearestBuilding(ev.Location, models.BuildingFireStation)
	if err != nil {
		return models.Fail(err)
	}
	plan := RescuePlan{
		EventID:  ev.ID,
		Station:  st.ID,
		ETA:      u.world.TravelTime(st.Location, ev.Location, environment.SpeedOf("fire_truck")),
		Floor:    ev.Floor,
		Approach: "ground entry",
	}
	if ev.Floor > 3 {
		plan.Approach = "aerial ladder"
	}
	if ev.Type == "gas_leak" {
		plan.Approach = "upwind hazmat entry"
	}
	return models.Ok(plan, fmt.Sprintf("Rescue from %s via %s, ETA %.1f minutes", st.ID, plan.Approach, plan.ETA))
}
