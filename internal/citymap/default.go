package citymap

import (
	"fmt"
	"math/rand"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// referenceSize is the grid edge the default layout is authored for;
// coordinates are scaled to the actual grid.
const referenceSize = 1000.0

// Building stock of the emergency services in the default city.
var (
	HospitalStock      = map[string]int{"beds": 200, "ambulances": 10, "doctors": 50, "nurses": 100}
	LargeHospitalStock = map[string]int{"beds": 300, "ambulances": 15, "doctors": 80, "nurses": 160}
	FireStationStock   = map[string]int{"trucks": 5, "firefighters": 30, "equipment": 100}
	PoliceStationStock = map[string]int{"cars": 20, "officers": 100, "equipment": 200}
)

// DefaultCity builds the standard exercise city: two hospitals, two fire
// stations, two police stations, ten residential and ten commercial buildings,
// and a road grid every 100 reference cells.
func DefaultCity(width, height int, rng *rand.Rand) *CityMap {
	m := New(width, height)
	sx := float64(m.width) / referenceSize
	sy := float64(m.height) / referenceSize
	at := func(x, y float64) models.Location {
		return models.Location{X: x * sx, Y: y * sy}
	}

	services := []models.Building{
		{ID: "hospital_1", Type: models.BuildingHospital, Location: at(100, 100), Floors: 10, Capacity: 500, Stock: copyStock(HospitalStock)},
		{ID: "hospital_2", Type: models.BuildingHospital, Location: at(800, 800), Floors: 15, Capacity: 800, Stock: copyStock(LargeHospitalStock)},
		{ID: "fire_1", Type: models.BuildingFireStation, Location: at(200, 200), Floors: 3, Capacity: 50, Stock: copyStock(FireStationStock)},
		{ID: "fire_2", Type: models.BuildingFireStation, Location: at(700, 700), Floors: 3, Capacity: 50, Stock: copyStock(FireStationStock)},
		{ID: "police_1", Type: models.BuildingPoliceStation, Location: at(300, 300), Floors: 5, Capacity: 100, Stock: copyStock(PoliceStationStock)},
		{ID: "police_2", Type: models.BuildingPoliceStation, Location: at(600, 600), Floors: 5, Capacity: 100, Stock: copyStock(PoliceStationStock)},
	}

	for i := 0; i < 10; i++ {
		residents := 100 + rng.Intn(401)
		m.AddBuilding(models.Building{
			ID:       fmt.Sprintf("residential_%d", i),
			Type:     models.BuildingResidential,
			Location: at(rng.Float64()*referenceSize, rng.Float64()*referenceSize),
			Floors:   5 + rng.Intn(26),
			Capacity: 100 + rng.Intn(401),
			Stock:    map[string]int{"residents": residents},
		})
		m.AddBuilding(models.Building{
			ID:       fmt.Sprintf("commercial_%d", i),
			Type:     models.BuildingCommercial,
			Location: at(rng.Float64()*referenceSize, rng.Float64()*referenceSize),
			Floors:   5 + rng.Intn(46),
			Capacity: 200 + rng.Intn(801),
			Stock:    map[string]int{"workers": 50 + rng.Intn(151)},
		})
	}
	for _, b := range services {
		m.AddBuilding(b)
	}

	m.layRoads(int(100*sx), int(10*sx), int(100*sy), int(10*sy))
	m.seedPopulation()
	return m
}

func (m *CityMap) layRoads(stepX, widthX, stepY, widthY int) {
	if stepX < 1 {
		stepX = 1
	}
	if stepY < 1 {
		stepY = 1
	}
	if widthX < 1 {
		widthX = 1
	}
	if widthY < 1 {
		widthY = 1
	}
	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {
			if x%stepX < widthX || y%stepY < widthY {
				m.roads[m.index(x, y)] = true
			}
		}
	}
	for n, x := 0, 0; x < m.width; n, x = n+1, x+stepX {
		m.roadLines = append(m.roadLines, roadLine{id: roadID(true, n), axisX: true, from: x, width: widthX})
	}
	for n, y := 0, 0; y < m.height; n, y = n+1, y+stepY {
		m.roadLines = append(m.roadLines, roadLine{id: roadID(false, n), from: y, width: widthY})
	}
}

// seedPopulation spreads each residential and commercial occupancy over a
// small square around the building.
func (m *CityMap) seedPopulation() {
	const spread = 5
	for _, b := range m.buildings {
		people := b.Stock["residents"] + b.Stock["workers"]
		if people == 0 {
			continue
		}
		cx, cy := m.clampX(b.Location.X), m.clampY(b.Location.Y)
		cells := 0
		for x := cx - spread; x <= cx+spread; x++ {
			for y := cy - spread; y <= cy+spread; y++ {
				if m.inBounds(x, y) {
					cells++
				}
			}
		}
		share := float64(people) / float64(cells)
		for x := cx - spread; x <= cx+spread; x++ {
			for y := cy - spread; y <= cy+spread; y++ {
				if m.inBounds(x, y) {
					m.density[m.index(x, y)] += share
				}
			}
		}
	}
}

func copyStock(s map[string]int) map[string]int {
	out := make(map[string]int, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
