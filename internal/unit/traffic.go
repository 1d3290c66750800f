package unit

import (
	"context"
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/citymap"
	"github.com/shenikar/city_emergency_response/internal/models"
)

// controlRadius is how far from an incident roads are put under control.
const controlRadius = 150.0

// GetTrafficStatus reads road conditions.
type GetTrafficStatus struct{}

func (a *GetTrafficStatus) Name() string { return models.ActionGetTrafficStatus }

func (a *GetTrafficStatus) Execute(_ context.Context, u *Unit) models.Result {
	return u.world.GetTrafficInfo()
}

// Route is a planned responder route.
type Route struct {
	From       models.Location `json:"from"`
	To         models.Location `json:"to"`
	Distance   float64         `json:"distance"`
	ETA        float64         `json:"eta_minutes"`
	Roads      []string        `json:"roads"`
	Congestion string          `json:"congestion"`
	EntersZone bool            `json:"enters_danger_zone"`
}

// PlanRescueRoute plans a route from the unit, or a given origin, to an incident.
type PlanRescueRoute struct {
	EventID string           `json:"event_id"`
	From    *models.Location `json:"from"`
}

func (a *PlanRescueRoute) Name() string { return models.ActionPlanRescueRoute }

func (a *PlanRescueRoute) Execute(_ context.Context, u *Unit) models.Result {
	ev, err := u.event(a.EventID)
	if err != nil {
		return models.Fail(err)
	}
	from := u.location()
	if a.From != nil {
		from = u.world.Bounds(*a.From)
	}
	r := Route{
		From:       from,
		To:         ev.Location,
		Distance:   citymap.Distance(from, ev.Location),
		ETA:        u.world.TravelTime(from, ev.Location, citymap.DefaultSpeed),
		Roads:      u.world.RoadsNear(ev.Location, controlRadius),
		Congestion: u.world.TrafficInfo().Congestion,
	}
	for _, z := range u.world.DangerZones() {
		if z.Contains(ev.Location) {
			r.EntersZone = true
			break
		}
	}
	return models.Ok(r, fmt.Sprintf("Route to %s takes %.1f minutes in %s traffic", ev.ID, r.ETA, r.Congestion))
}

// ImplementTrafficControl puts roads near an incident, or the listed roads,
// under control.
type ImplementTrafficControl struct {
	EventID string   `json:"event_id"`
	Roads   []string `json:"roads"`
}

func (a *ImplementTrafficControl) Name() string { return models.ActionImplementTrafficControl }

func (a *ImplementTrafficControl) Execute(_ context.Context, u *Unit) models.Result {
	roads := a.Roads
	if len(roads) == 0 {
		ev, err := u.event(a.EventID)
		if err != nil {
			return models.Fail(err)
		}
		roads = u.world.RoadsNear(ev.Location, controlRadius)
	}
	accepted := u.world.ControlTraffic(roads)
	if len(accepted) == 0 {
		return models.Fail(fmt.Errorf("unit: none of %v is a known road", roads))
	}
	return models.Ok(accepted, fmt.Sprintf("Traffic control on %d roads", len(accepted)))
}
