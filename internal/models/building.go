package models

type BuildingType string

const (
	BuildingHospital      BuildingType = "hospital"
	BuildingFireStation   BuildingType = "fire_station"
	BuildingPoliceStation BuildingType = "police_station"
	BuildingResidential   BuildingType = "residential"
	BuildingCommercial    BuildingType = "commercial"
)

// Building is a static city structure. Stock is a building-level summary
// (beds, residents, trucks...) and is not tracked per item.
type Building struct {
	ID       string         `json:"id"`
	Type     BuildingType   `json:"type"`
	Location Location       `json:"location"`
	Floors   int            `json:"floors"`
	Capacity int            `json:"capacity"`
	Stock    map[string]int `json:"stock"`
}
