package datamanager

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// department groups the facilities and resource kinds of one service.
type department struct {
	name     string
	keywords []string
	building models.BuildingType
	kinds    []string
}

var departments = []department{
	{
		name:     "fire department",
		keywords: []string{"fire", "rescue", "hazmat"},
		building: models.BuildingFireStation,
		kinds:    []string{"fire_truck", "firefighter", "rescue_equipment"},
	},
	{
		name:     "police department",
		keywords: []string{"police", "security", "traffic"},
		building: models.BuildingPoliceStation,
		kinds:    []string{"police_car", "officer", "police_equipment"},
	},
	{
		name:     "medical department",
		keywords: []string{"medical", "ambulance", "hospital"},
		building: models.BuildingHospital,
		kinds:    []string{"ambulance", "doctor", "nurse"},
	},
}

// Department is the summary of one matched service.
type Department struct {
	Name       string            `json:"name"`
	Facilities []models.Building `json:"facilities"`
	Available  map[string]int    `json:"available"`
}

// EventSummary is a short view of an active incident.
type EventSummary struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Severity   models.Severity `json:"severity"`
	Location   models.Location `json:"location"`
	Casualties int             `json:"casualties"`
	Radius     float64         `json:"affected_radius"`
}

// RelevantContext is what a unit is told about the world for one task.
type RelevantContext struct {
	Departments []Department   `json:"departments"`
	Events      []EventSummary `json:"active_events"`
	Congestion  string         `json:"traffic"`
}

// QueryRelevantContext selects department summaries by keywords found in the
// task description. Active incidents and the congestion label are always
// included; no match yields an empty department list.
func (m *Manager) QueryRelevantContext(taskDescription string) RelevantContext {
	text := strings.ToLower(taskDescription)

	m.mu.RLock()
	defer m.mu.RUnlock()

	available := make(map[string]int, len(m.snapshot.Resources))
	for _, c := range m.snapshot.Resources {
		available[c.Kind] = c.Available
	}

	ctx := RelevantContext{
		Departments: []Department{},
		Events:      []EventSummary{},
		Congestion:  m.snapshot.Congestion,
	}
	for _, d := range departments {
		if !containsAny(text, d.keywords) {
			continue
		}
		dep := Department{Name: d.name, Available: make(map[string]int, len(d.kinds))}
		for _, b := range m.snapshot.Buildings {
			if b.Type == d.building {
				dep.Facilities = append(dep.Facilities, b)
			}
		}
		for _, k := range d.kinds {
			dep.Available[k] = available[k]
		}
		ctx.Departments = append(ctx.Departments, dep)
	}
	for _, e := range m.snapshot.Events {
		if !e.IsActive() {
			continue
		}
		ctx.Events = append(ctx.Events, EventSummary{
			ID:         e.ID,
			Type:       e.Type,
			Severity:   e.Severity,
			Location:   e.Location,
			Casualties: e.Casualties,
			Radius:     e.AffectedRadius,
		})
	}
	return ctx
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// String renders the context as the text handed to the decision collaborator.
func (c RelevantContext) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Traffic: %s\n", c.Congestion)
	if len(c.Events) == 0 {
		b.WriteString("Active incidents: none\n")
	} else {
		b.WriteString("Active incidents:\n")
		for _, e := range c.Events {
			fmt.Fprintf(&b, "- %s (%s, %s) at (%.0f, %.0f), casualties %d, radius %.0f\n",
				e.ID, e.Type, e.Severity, e.Location.X, e.Location.Y, e.Casualties, e.Radius)
		}
	}
	for _, d := range c.Departments {
		fmt.Fprintf(&b, "%s:\n", d.Name)
		for _, f := range d.Facilities {
			fmt.Fprintf(&b, "- %s at (%.0f, %.0f)\n", f.ID, f.Location.X, f.Location.Y)
		}
		kinds := make([]string, 0, len(d.Available))
		for k := range d.Available {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "- available %s: %d\n", k, d.Available[k])
		}
	}
	return b.String()
}
