package environment

import (
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// The Get* methods are the unit-facing query surface: lookups never return an
// error, they report failure inside models.Result.

// GetBuildingInfo lists buildings of one type, or all when t is empty.
func (e *Environment) GetBuildingInfo(t models.BuildingType) models.Result {
	bs := e.Buildings(t)
	return models.Ok(bs, fmt.Sprintf("Found %d buildings", len(bs)))
}

// GetEventInfo returns one event, or every active event when id is empty.
func (e *Environment) GetEventInfo(id string) models.Result {
	if id == "" {
		evs := e.ActiveEvents()
		return models.Ok(evs, fmt.Sprintf("Retrieved information for %d events", len(evs)))
	}
	ev, err := e.Event(id)
	if err != nil {
		return models.Fail(err)
	}
	return models.Ok(ev, "Retrieved information for 1 events")
}

// GetResourceStatus reports ledger counts and deployments.
func (e *Environment) GetResourceStatus() models.Result {
	return models.Ok(e.ResourceStatus(), "Resource status retrieved")
}

// GetUnitResources lists what a registered unit holds.
func (e *Environment) GetUnitResources(unitID string) models.Result {
	if _, err := e.units.Get(unitID); err != nil {
		return models.Fail(err)
	}
	rs := e.UnitResources(unitID)
	return models.Ok(rs, fmt.Sprintf("Unit %s holds %d resources", unitID, len(rs)))
}

// GetTrafficInfo reports road conditions.
func (e *Environment) GetTrafficInfo() models.Result {
	info := e.TrafficInfo()
	return models.Ok(info, "Traffic is "+info.Congestion)
}

// GetEnvironmentalData reports sensor readings.
func (e *Environment) GetEnvironmentalData() models.Result {
	return models.Ok(e.EnvironmentalData(), "Environmental data retrieved")
}

// SetDangerZone records one zone.
func (e *Environment) SetDangerZone(z DangerZone) models.Result {
	if z.Radius <= 0 {
		return models.Fail(fmt.Errorf("environment: danger zone radius must be positive"))
	}
	return models.Ok(e.SetDangerZones(z), "Danger zone set")
}
