package models

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

type EventState string

const (
	EventSpawned  EventState = "spawned"
	EventActive   EventState = "active"
	EventResolved EventState = "resolved"
)

// EmergencyEvent is an incident evolving over simulated time.
// Casualties and AffectedRadius never decrease.
type EmergencyEvent struct {
	ID             string             `json:"id"`
	Type           string             `json:"type"`
	Location       Location           `json:"location"`
	Floor          int                `json:"floor"`
	Severity       Severity           `json:"severity"`
	StartTime      time.Time          `json:"start_time"`
	Properties     map[string]float64 `json:"properties"`
	Casualties     int                `json:"casualties"`
	AffectedRadius float64            `json:"affected_radius"`
	State          EventState         `json:"state"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
}

// IsActive reports whether the event still needs a response.
func (e *EmergencyEvent) IsActive() bool {
	return e.State != EventResolved
}

// Clone returns a deep copy of the event.
func (e *EmergencyEvent) Clone() *EmergencyEvent {
	c := *e
	c.Properties = make(map[string]float64, len(e.Properties))
	for k, v := range e.Properties {
		c.Properties[k] = v
	}
	if e.ResolvedAt != nil {
		t := *e.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
