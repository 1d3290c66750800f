package models

type ResourceType string

const (
	ResourceVehicle   ResourceType = "vehicle"
	ResourcePersonnel ResourceType = "personnel"
	ResourceEquipment ResourceType = "equipment"
)

type ResourceStatus string

const (
	StatusAvailable   ResourceStatus = "available"
	StatusInUse       ResourceStatus = "in_use"
	StatusMaintenance ResourceStatus = "maintenance"
	StatusOffline     ResourceStatus = "offline"
)

// Property keys carried by resources.
const (
	PropVehicleType = "vehicle_type"
	PropRole        = "role"
	PropSkillLevel  = "skill_level"
	PropEquipment   = "equipment_type"
)

// Resource is an individually tracked vehicle, person or equipment item.
// Status is in_use exactly when Owner is set.
type Resource struct {
	ID         string            `json:"id"`
	Type       ResourceType      `json:"type"`
	Kind       string            `json:"kind"`
	Properties map[string]string `json:"properties,omitempty"`
	Location   Location          `json:"location"`
	Status     ResourceStatus    `json:"status"`
	Owner      string            `json:"owner,omitempty"`
	HomeID     string            `json:"home_id"`
}

// Clone returns a copy that shares no maps with r.
func (r Resource) Clone() Resource {
	props := make(map[string]string, len(r.Properties))
	for k, v := range r.Properties {
		props[k] = v
	}
	r.Properties = props
	return r
}

// Deployment tracks a resource travelling to a destination.
type Deployment struct {
	ResourceID string   `json:"resource_id"`
	UnitID     string   `json:"unit_id"`
	From       Location `json:"from"`
	To         Location `json:"to"`
	TravelTime float64  `json:"travel_time_minutes"`
	DepartedAt float64  `json:"departed_at_minute"`
	ArrivesAt  float64  `json:"arrives_at_minute"`
	Arrived    bool     `json:"arrived"`
}

// ResourceCount aggregates the ledger for one resource kind.
type ResourceCount struct {
	Kind      string `json:"kind"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	InUse     int    `json:"in_use"`
}
