package unit

import (
	"context"
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/environment"
	"github.com/shenikar/city_emergency_response/internal/models"
)

// spreadPerWind converts wind speed into spread speed, cells per minute.
const spreadPerWind = 0.5

const defaultHorizon = 30.0

// GetEnvironmentalData reads the sensors.
type GetEnvironmentalData struct{}

func (a *GetEnvironmentalData) Name() string { return models.ActionGetEnvironmentalData }

func (a *GetEnvironmentalData) Execute(_ context.Context, u *Unit) models.Result {
	return u.world.GetEnvironmentalData()
}

// Risk is the monitoring assessment of current readings.
type Risk struct {
	Level           string                        `json:"risk_level"`
	Readings        environment.EnvironmentalData `json:"readings"`
	Recommendations []string                      `json:"recommendations"`
}

// AnalyzeRisk grades the current readings.
type AnalyzeRisk struct{}

func (a *AnalyzeRisk) Name() string { return models.ActionAnalyzeRisk }

func (a *AnalyzeRisk) Execute(_ context.Context, u *Unit) models.Result {
	data := u.world.EnvironmentalData()
	r := Risk{Level: gasLevel(data.GasConcentration), Readings: data}
	if data.Temperature > 600 || data.SmokeLevel > 0.8 {
		r.Level = LevelHigh
	}
	switch r.Level {
	case LevelHigh:
		r.Recommendations = []string{"evacuate the danger zone", "keep responders upwind"}
	case LevelMedium:
		r.Recommendations = []string{"prepare evacuation", "monitor readings"}
	default:
		r.Recommendations = []string{"monitor readings"}
	}
	return models.Ok(r, "Risk level is "+r.Level)
}

// SpreadForecast predicts the affected area of one incident.
type SpreadForecast struct {
	EventID         string  `json:"event_id"`
	CurrentRadius   float64 `json:"current_radius"`
	PredictedRadius float64 `json:"predicted_radius"`
	Horizon         float64 `json:"horizon_minutes"`
	Direction       float64 `json:"direction"`
	Population      float64 `json:"population_at_risk"`
}

// PredictDisasterSpread forecasts the spread of one or every active incident.
type PredictDisasterSpread struct {
	EventID string  `json:"event_id"`
	Minutes float64 `json:"minutes" validate:"gte=0"`
}

func (a *PredictDisasterSpread) Name() string { return models.ActionPredictDisasterSpread }

func (a *PredictDisasterSpread) Execute(_ context.Context, u *Unit) models.Result {
	horizon := a.Minutes
	if horizon == 0 {
		horizon = defaultHorizon
	}
	var events []*models.EmergencyEvent
	if a.EventID != "" {
		ev, err := u.world.Event(a.EventID)
		if err != nil {
			return models.Fail(err)
		}
		events = append(events, ev)
	} else {
		events = u.world.ActiveEvents()
	}
	if len(events) == 0 {
		return models.Fail(fmt.Errorf("unit: nothing to forecast: %w", models.ErrEventNotFound))
	}

	wind := u.world.EnvironmentalData().Wind
	speed := wind.Speed * spreadPerWind
	out := make([]SpreadForecast, 0, len(events))
	for _, ev := range events {
		predicted := ev.AffectedRadius + speed*horizon
		out = append(out, SpreadForecast{
			EventID:         ev.ID,
			CurrentRadius:   ev.AffectedRadius,
			PredictedRadius: predicted,
			Horizon:         horizon,
			Direction:       wind.Direction,
			Population:      u.world.PopulationAround(ev.Location, predicted),
		})
	}
	return models.Ok(out, fmt.Sprintf("Forecast %d incidents over %.0f minutes", len(out), horizon))
}
