package unit

import (
	"context"
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/decision"
	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
)

var medicalKinds = []string{"ambulance", "doctor", "nurse"}

// GetMedicalResources counts available medical resources per hospital.
type GetMedicalResources struct{}

func (a *GetMedicalResources) Name() string { return models.ActionGetMedicalResources }

func (a *GetMedicalResources) Execute(_ context.Context, u *Unit) models.Result {
	hospitals := u.world.Buildings(models.BuildingHospital)
	out := make(map[string]map[string]int, len(hospitals))
	total := 0
	for _, h := range hospitals {
		counts := make(map[string]int, len(medicalKinds)+1)
		for _, kind := range medicalKinds {
			n := len(u.world.QueryResources(ledger.Filter{HomeID: h.ID, Kind: kind, Status: models.StatusAvailable}))
			counts[kind] = n
			total += n
		}
		counts["beds"] = h.Stock["beds"]
		out[h.ID] = counts
	}
	return models.Ok(out, fmt.Sprintf("%d medical resources available in %d hospitals", total, len(hospitals)))
}

// OrganizeMedicalTeam claims the medical bundle matching incident severity.
type OrganizeMedicalTeam struct {
	EventID  string          `json:"event_id"`
	Severity models.Severity `json:"severity" validate:"omitempty,oneof=low medium high"`
}

func (a *OrganizeMedicalTeam) Name() string { return models.ActionOrganizeMedicalTeam }

func (a *OrganizeMedicalTeam) Execute(_ context.Context, u *Unit) models.Result {
	sev := a.Severity
	if sev == "" {
		ev, err := u.event(a.EventID)
		if err != nil {
			return models.Fail(err)
		}
		sev = ev.Severity
	}
	bundle, ok := decision.SeverityResources[sev]
	if !ok {
		bundle = decision.SeverityResources[models.SeverityMedium]
	}
	return u.organize(bundle)
}

// MedicalPlan routes casualties of one incident to the nearest hospital.
type MedicalPlan struct {
	EventID    string          `json:"event_id"`
	Hospital   string          `json:"hospital"`
	Distance   float64         `json:"distance"`
	ETA        float64         `json:"eta_minutes"`
	Casualties int             `json:"casualties"`
	Triage     models.Severity `json:"triage"`
	Bundle     map[string]int  `json:"bundle"`
}

// CreateMedicalPlan picks the receiving hospital and the team size.
type CreateMedicalPlan struct {
	EventID string `json:"event_id"`
}

func (a *CreateMedicalPlan) Name() string { return models.ActionCreateMedicalPlan }

func (a *CreateMedicalPlan) Execute(_ context.Context, u *Unit) models.Result {
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	h, dist, err := u.world.NearestBuilding(ev.Location, models.BuildingHospital)
	if err != nil {
		return models.Fail(err)
	}
	plan := MedicalPlan{
		EventID:    ev.ID,
		Hospital:   h.ID,
		Distance:   dist,
		ETA:        u.world.TravelTime(h.Location, ev.Location, environment.SpeedOf("ambulance")),
		Casualties: ev.Casualties,
		Triage:     ev.Severity,
		Bundle:     decision.SeverityResources[ev.Severity],
	}
	return models.Ok(plan, fmt.Sprintf("Casualties of %s go to %s, ambulance ETA %.1f minutes", ev.ID, h.ID, plan.ETA))
}
