package environment

import (
	"math"
	"math/rand"

	"github.com/shenikar/city_emergency_response/internal/citymap"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/sirupsen/logrus"
)

// trafficControlFactor is applied to a controlled road's density every tick.
const trafficControlFactor = 0.5

// DangerZone is a circular area closed to the public.
type DangerZone struct {
	Center models.Location `json:"center"`
	Radius float64         `json:"radius"`
}

// Contains reports whether loc lies inside the zone.
func (z DangerZone) Contains(loc models.Location) bool {
	return z.Center.DistanceTo(loc) <= z.Radius
}

// Wind drifts a little every tick; monitoring units use it for spread estimates.
type Wind struct {
	Speed     float64 `json:"wind_speed"`
	Direction float64 `json:"wind_direction"`
}

func (w Wind) drift(rng *rand.Rand) Wind {
	w.Speed = math.Max(0, math.Min(30, w.Speed+rng.Float64()*2-1))
	w.Direction = math.Mod(w.Direction+rng.Float64()*20-10+360, 360)
	return w
}

// EnvironmentalData is the sensor picture around active incidents.
type EnvironmentalData struct {
	GasConcentration float64 `json:"gas_concentration"`
	Temperature      float64 `json:"temperature"`
	SmokeLevel       float64 `json:"smoke_level"`
	Wind
}

// TrafficInfo summarises road conditions.
type TrafficInfo struct {
	MeanDensity     float64  `json:"mean_density"`
	Congestion      string   `json:"congestion"`
	Roads           []string `json:"roads"`
	ControlledRoads []string `json:"controlled_roads,omitempty"`
}

// SetDangerZones appends zones and returns the full list.
func (e *Environment) SetDangerZones(zones ...DangerZone) []DangerZone {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, z := range zones {
		if z.Radius <= 0 {
			continue
		}
		e.dangerZones = append(e.dangerZones, z)
	}
	e.logger.WithFields(logrus.Fields{
		"service": "Environment",
		"method":  "SetDangerZones",
		"zones":   len(e.dangerZones),
	}).Info("Danger zones updated")
	return append([]DangerZone(nil), e.dangerZones...)
}

// DangerZones returns the current zones.
func (e *Environment) DangerZones() []DangerZone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]DangerZone(nil), e.dangerZones...)
}

// InDangerZone reports whether loc is inside any zone.
func (e *Environment) InDangerZone(loc models.Location) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, z := range e.dangerZones {
		if z.Contains(loc) {
			return true
		}
	}
	return false
}

// ControlTraffic puts known road lines under traffic control and returns the
// ids that were accepted. Unknown ids are ignored.
func (e *Environment) ControlTraffic(roadIDs []string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var accepted []string
	for _, id := range roadIDs {
		if !e.city.HasRoad(id) {
			continue
		}
		if !e.controlled[id] {
			e.controlled[id] = true
			e.city.ScaleRoadTraffic(id, trafficControlFactor)
		}
		accepted = append(accepted, id)
	}
	return accepted
}

// TrafficInfo reports mean density, its congestion label and road ids.
func (e *Environment) TrafficInfo() TrafficInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	mean := e.city.MeanTraffic()
	info := TrafficInfo{
		MeanDensity: mean,
		Congestion:  citymap.CongestionLabel(mean),
		Roads:       e.city.RoadIDs(),
	}
	for _, id := range info.Roads {
		if e.controlled[id] {
			info.ControlledRoads = append(info.ControlledRoads, id)
		}
	}
	return info
}

// EnvironmentalData takes the worst reading over active incidents.
func (e *Environment) EnvironmentalData() EnvironmentalData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	data := EnvironmentalData{Wind: e.wind}
	for _, ev := range e.events.Active() {
		data.GasConcentration = math.Max(data.GasConcentration, ev.Properties["gas_concentration"])
		data.Temperature = math.Max(data.Temperature, ev.Properties["temperature"])
		data.SmokeLevel = math.Max(data.SmokeLevel, ev.Properties["smoke_level"])
	}
	return data
}

// RoadsNear lists road lines within radius of loc.
func (e *Environment) RoadsNear(loc models.Location, radius float64) []string {
	return e.city.RoadsNear(loc, radius)
}

// PopulationAround estimates the number of people within radius of center.
func (e *Environment) PopulationAround(center models.Location, radius float64) float64 {
	return e.city.PopulationAround(center, radius)
}

// Bounds clamps loc onto the city grid.
func (e *Environment) Bounds(loc models.Location) models.Location {
	w, h := e.city.Size()
	loc.X = math.Max(0, math.Min(float64(w-1), loc.X))
	loc.Y = math.Max(0, math.Min(float64(h-1), loc.Y))
	return loc
}
