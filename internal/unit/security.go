package unit

import (
	"context"
	"fmt"
	"math"

	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
)

const (
	minPerimeter       = 100.0
	perimeterFactor    = 1.5
	assemblyOffset     = 300.0
	officersPerPost    = 2
	evacuationRateHour = 600.0
)

// SetSecurityPerimeter closes a circle around an incident.
type SetSecurityPerimeter struct {
	EventID string  `json:"event_id"`
	Radius  float64 `json:"radius" validate:"gte=0"`
}

func (a *SetSecurityPerimeter) Name() string { return models.ActionSetSecurityPerimeter }

func (a *SetSecurityPerimeter) Execute(_ context.Context, u *Unit) models.Result {
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	radius := a.Radius
	if radius == 0 {
		radius = math.Max(minPerimeter, ev.AffectedRadius*perimeterFactor)
	}
	return u.world.SetDangerZone(environment.DangerZone{Center: ev.Location, Radius: radius})
}

// EvacuationRoute moves the people of one danger zone to an assembly point.
type EvacuationRoute struct {
	Zone          environment.DangerZone `json:"zone"`
	Population    float64                `json:"population"`
	AssemblyPoint models.Location        `json:"assembly_point"`
	Minutes       float64                `json:"estimated_minutes"`
}

// CreateEvacuationPlan builds one route per danger zone.
type CreateEvacuationPlan struct{}

func (a *CreateEvacuationPlan) Name() string { return models.ActionCreateEvacuationPlan }

func (a *CreateEvacuationPlan) Execute(_ context.Context, u *Unit) models.Result {
	zones := u.world.DangerZones()
	if len(zones) == 0 {
		return models.Fail(fmt.Errorf("unit: no danger zone to evacuate"))
	}
	routes := make([]EvacuationRoute, 0, len(zones))
	people := 0.0
	for _, z := range zones {
		pop := u.world.PopulationAround(z.Center, z.Radius)
		people += pop
		routes = append(routes, EvacuationRoute{
			Zone:          z,
			Population:    pop,
			AssemblyPoint: u.world.Bounds(models.Location{X: z.Center.X + assemblyOffset, Y: z.Center.Y + assemblyOffset}),
			Minutes:       pop / evacuationRateHour * 60,
		})
	}
	return models.Ok(routes, fmt.Sprintf("Evacuation planned for about %.0f people in %d zones", people, len(routes)))
}

// DeploySecurityPersonnel posts officers on the four sides of the perimeter.
type DeploySecurityPersonnel struct {
	EventID string `json:"event_id"`
}

func (a *DeploySecurityPersonnel) Name() string { return models.ActionDeploySecurityPersonnel }

func (a *DeploySecurityPersonnel) Execute(_ context.Context, u *Unit) models.Result {
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	radius := minPerimeter
	for _, z := range u.world.DangerZones() {
		if z.Contains(ev.Location) && z.Radius > radius {
			radius = z.Radius
		}
	}
	posts := []models.Location{
		u.world.Bounds(models.Location{X: ev.Location.X + radius, Y: ev.Location.Y}),
		u.world.Bounds(models.Location{X: ev.Location.X - radius, Y: ev.Location.Y}),
		u.world.Bounds(models.Location{X: ev.Location.X, Y: ev.Location.Y + radius}),
		u.world.Bounds(models.Location{X: ev.Location.X, Y: ev.Location.Y - radius}),
	}

	officers := u.world.QueryResources(ledger.Filter{Kind: "officer", Status: models.StatusAvailable})
	var posted []models.Deployment
	next := 0
	for _, post := range posts {
		for i := 0; i < officersPerPost; i++ {
			for next < len(officers) {
				id := officers[next].ID
				next++
				if err := u.world.Assign(id, u.name); err != nil {
					continue
				}
				d, err := u.world.Deploy(id, u.name, post)
				if err != nil {
					_ = u.world.Release(id)
					continue
				}
				posted = append(posted, d)
				break
			}
		}
	}
	want := len(posts) * officersPerPost
	if len(posted) == 0 {
		return models.Fail(fmt.Errorf("unit: no officers for %s: %w", ev.ID, models.ErrResourceUnavailable))
	}
	if len(posted) < want {
		return failWith(posted, fmt.Errorf("unit: posted %d of %d officers around %s: %w", len(posted), want, ev.ID, models.ErrResourceUnavailable))
	}
	return models.Ok(posted, fmt.Sprintf("Posted %d officers around %s", len(posted), ev.ID))
}
