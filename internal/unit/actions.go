package unit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/city_emergency_response/internal/models"
)

var validate = validator.New()

// Action is one typed capability of a unit. Arguments are decoded into the
// concrete struct before Execute runs.
type Action interface {
	Name() string
	Execute(ctx context.Context, u *Unit) models.Result
}

func newCatalog(ctors ...func() Action) map[string]func() Action {
	out := make(map[string]func() Action, len(ctors))
	for _, c := range ctors {
		out[c().Name()] = c
	}
	return out
}

func withCommon(ctors ...func() Action) map[string]func() Action {
	return newCatalog(append([]func() Action{
		func() Action { return &OrganizeTeam{} },
		func() Action { return &ReleaseResources{} },
		func() Action { return &DeployResources{} },
		func() Action { return &ReportStatus{} },
	}, ctors...)...)
}

// catalogs is the closed action set per specialty.
var catalogs = map[models.UnitType]map[string]func() Action{
	models.UnitMedical: withCommon(
		func() Action { return &GetMedicalResources{} },
		func() Action { return &OrganizeMedicalTeam{} },
		func() Action { return &CreateMedicalPlan{} },
	),
	models.UnitRescue: withCommon(
		func() Action { return &IdentifyHazard{} },
		func() Action { return &OrganizeRescueTeam{} },
		func() Action { return &CreateRescuePlan{} },
	),
	models.UnitSecurity: withCommon(
		func() Action { return &SetSecurityPerimeter{} },
		func() Action { return &CreateEvacuationPlan{} },
		func() Action { return &DeploySecurityPersonnel{} },
	),
	models.UnitMonitoring: withCommon(
		func() Action { return &GetEnvironmentalData{} },
		func() Action { return &AnalyzeRisk{} },
		func() Action { return &PredictDisasterSpread{} },
	),
	models.UnitTraffic: withCommon(
		func() Action { return &GetTrafficStatus{} },
		func() Action { return &PlanRescueRoute{} },
		func() Action { return &ImplementTrafficControl{} },
	),
}

func actionNames(c map[string]func() Action) []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func decodeArgs(raw json.RawMessage, a Action) error {
	if err := json.Unmarshal(raw, a); err != nil {
		return err
	}
	return validate.Struct(a)
}

func failWith(data any, err error) models.Result {
	r := models.Fail(err)
	r.Data = data
	return r
}

// event resolves id, or the first active incident when id is empty.
func (u *Unit) event(id string) (*models.EmergencyEvent, error) {
	if id != "" {
		return u.world.Event(id)
	}
	active := u.world.ActiveEvents()
	if len(active) == 0 {
		return nil, fmt.Errorf("unit: no active incident: %w", models.ErrEventNotFound)
	}
	return active[0], nil
}

// OrganizeTeam claims a resource bundle for the unit.
type OrganizeTeam struct {
	Requirements map[string]int `json:"requirements" validate:"dive,min=0"`
	EventID      string         `json:"event_id"`
}

func (a *OrganizeTeam) Name() string { return models.ActionOrganizeTeam }

func (a *OrganizeTeam) Execute(_ context.Context, u *Unit) models.Result {
	return u.organize(a.Requirements)
}

func (u *Unit) organize(requirements map[string]int) models.Result {
	if len(requirements) == 0 {
		return models.Ok(nil, "No resources required")
	}
	res, err := u.world.OrganizeTeam(u.name, requirements)
	if err != nil {
		return failWith(res, err)
	}
	return models.Ok(res, fmt.Sprintf("Team organized with %d resources", len(res.Assigned)))
}

// ReleaseResources returns the listed resources, or all held ones, to the ledger.
type ReleaseResources struct {
	ResourceIDs []string `json:"resource_ids"`
}

func (a *ReleaseResources) Name() string { return models.ActionReleaseResources }

func (a *ReleaseResources) Execute(_ context.Context, u *Unit) models.Result {
	if len(a.ResourceIDs) == 0 {
		ids := u.world.ReleaseUnit(u.name)
		return models.Ok(ids, fmt.Sprintf("Released %d resources", len(ids)))
	}
	held := make(map[string]bool)
	for _, r := range u.world.UnitResources(u.name) {
		held[r.ID] = true
	}
	var released []string
	var errs []error
	for _, id := range a.ResourceIDs {
		if !held[id] {
			errs = append(errs, fmt.Errorf("unit: %s does not hold %s: %w", u.name, id, models.ErrResourceNotFound))
			continue
		}
		if err := u.world.Release(id); err != nil {
			errs = append(errs, err)
			continue
		}
		released = append(released, id)
	}
	if len(errs) > 0 {
		return failWith(released, errors.Join(errs...))
	}
	return models.Ok(released, fmt.Sprintf("Released %d resources", len(released)))
}

// DeployResources sends every held resource to an incident or a location.
type DeployResources struct {
	EventID  string           `json:"event_id"`
	Location *models.Location `json:"location"`
}

func (a *DeployResources) Name() string { return models.ActionDeployResources }

func (a *DeployResources) Execute(_ context.Context, u *Unit) models.Result {
	var to models.Location
	if a.Location != nil {
		to = u.world.Bounds(*a.Location)
	} else {
		ev, err := u.event(a.EventID)
		if err != nil {
			return models.Fail(err)
		}
		to = ev.Location
	}

	held := u.world.UnitResources(u.name)
	if len(held) == 0 {
		return models.Fail(fmt.Errorf("unit: %s holds no resources to deploy: %w", u.name, models.ErrResourceUnavailable))
	}
	var deployed []models.Deployment
	var errs []error
	for _, r := range held {
		d, err := u.world.Deploy(r.ID, u.name, to)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		deployed = append(deployed, d)
	}
	if len(errs) > 0 {
		return failWith(deployed, errors.Join(errs...))
	}
	u.moveTo(to)

	eta := 0.0
	for _, d := range deployed {
		if d.TravelTime > eta {
			eta = d.TravelTime
		}
	}
	return models.Ok(deployed, fmt.Sprintf("Deployed %d resources, last arrival in %.1f minutes", len(deployed), eta))
}

// ReportStatus reports the unit's own state.
type ReportStatus struct{}

func (a *ReportStatus) Name() string { return models.ActionReportStatus }

func (a *ReportStatus) Execute(_ context.Context, u *Unit) models.Result {
	s := u.State()
	return models.Ok(s, fmt.Sprintf("%s holds %d resources at (%.0f, %.0f)", u.name, len(s.Resources), s.Location.X, s.Location.Y))
}
