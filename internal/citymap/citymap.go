// Package citymap holds the spatial world model: a fixed-size grid with
// buildings, roads, traffic density and population density.
//
// A CityMap is not safe for concurrent use; the environment serializes access.
package citymap

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// DefaultSpeed is the travel speed used when a caller passes zero, in cells per minute.
const DefaultSpeed = 50.0

// maxTrafficLoad bounds the random load added to each cell per traffic update.
const maxTrafficLoad = 0.1

type CityMap struct {
	width, height int

	buildings map[string]*models.Building
	roads     []bool
	traffic   []float64
	density   []float64

	roadLines []roadLine
}

// roadLine is a straight band of road cells running along one axis.
type roadLine struct {
	id    string
	axisX bool
	from  int
	width int
}

// New creates an empty map of the given size.
func New(width, height int) *CityMap {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	n := width * height
	return &CityMap{
		width:     width,
		height:    height,
		buildings: make(map[string]*models.Building),
		roads:     make([]bool, n),
		traffic:   make([]float64, n),
		density:   make([]float64, n),
	}
}

// Size returns the grid dimensions.
func (m *CityMap) Size() (int, int) {
	return m.width, m.height
}

func (m *CityMap) index(x, y int) int {
	return x*m.height + y
}

func (m *CityMap) inBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// AddBuilding registers or replaces a building.
func (m *CityMap) AddBuilding(b models.Building) {
	bc := b
	m.buildings[b.ID] = &bc
}

// Building returns a copy of the building with the given id.
func (m *CityMap) Building(id string) (models.Building, bool) {
	b, ok := m.buildings[id]
	if !ok {
		return models.Building{}, false
	}
	return *b, true
}

// Buildings returns buildings of the given type (all when empty), sorted by id.
func (m *CityMap) Buildings(t models.BuildingType) []models.Building {
	out := make([]models.Building, 0, len(m.buildings))
	for _, b := range m.buildings {
		if t != "" && b.Type != t {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NearestBuilding finds the closest building of type t (any type when empty).
func (m *CityMap) NearestBuilding(loc models.Location, t models.BuildingType) (models.Building, float64, bool) {
	var (
		best  models.Building
		found bool
	)
	minDist := math.Inf(1)
	for _, b := range m.Buildings(t) {
		d := Distance(loc, b.Location)
		if d < minDist {
			minDist = d
			best = b
			found = true
		}
	}
	return best, minDist, found
}

// Distance is the straight-line distance between a and b.
func Distance(a, b models.Location) float64 {
	return a.DistanceTo(b)
}

// PathDistance scales the direct distance by the mean traffic density inside
// the bounding box spanned by start and end.
func (m *CityMap) PathDistance(start, end models.Location) float64 {
	return Distance(start, end) * (1 + m.meanTrafficBetween(start, end))
}

// TravelTime estimates minutes needed to go from start to end at speed
// (cells per minute). A non-positive speed falls back to DefaultSpeed.
func (m *CityMap) TravelTime(start, end models.Location, speed float64) float64 {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return m.PathDistance(start, end) / speed
}

func (m *CityMap) meanTrafficBetween(a, b models.Location) float64 {
	x0, x1 := m.clampX(math.Min(a.X, b.X)), m.clampX(math.Max(a.X, b.X))
	y0, y1 := m.clampY(math.Min(a.Y, b.Y)), m.clampY(math.Max(a.Y, b.Y))
	var sum float64
	var n int
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			sum += m.traffic[m.index(x, y)]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (m *CityMap) clampX(v float64) int {
	return clampInt(int(v), 0, m.width-1)
}

func (m *CityMap) clampY(v float64) int {
	return clampInt(int(v), 0, m.height-1)
}

// AdvanceTraffic decays every cell by decay, adds a random load in
// [0, maxTrafficLoad) and clamps the result to [0,1].
func (m *CityMap) AdvanceTraffic(decay float64, rng *rand.Rand) {
	for i, v := range m.traffic {
		v = v*decay + rng.Float64()*maxTrafficLoad
		m.traffic[i] = clampFloat(v, 0, 1)
	}
}

// MeanTraffic is the average density over the whole grid.
func (m *CityMap) MeanTraffic() float64 {
	var sum float64
	for _, v := range m.traffic {
		sum += v
	}
	return sum / float64(len(m.traffic))
}

// TrafficAt returns the density of one cell; out-of-range cells read as zero.
func (m *CityMap) TrafficAt(x, y int) float64 {
	if !m.inBounds(x, y) {
		return 0
	}
	return m.traffic[m.index(x, y)]
}

// SetTraffic overrides the density of one cell, clamped to [0,1].
func (m *CityMap) SetTraffic(x, y int, v float64) {
	if !m.inBounds(x, y) {
		return
	}
	m.traffic[m.index(x, y)] = clampFloat(v, 0, 1)
}

// FillTraffic sets every cell to v, clamped to [0,1].
func (m *CityMap) FillTraffic(v float64) {
	v = clampFloat(v, 0, 1)
	for i := range m.traffic {
		m.traffic[i] = v
	}
}

// IsRoad reports whether a cell carries a road.
func (m *CityMap) IsRoad(x, y int) bool {
	return m.inBounds(x, y) && m.roads[m.index(x, y)]
}

// PopulationAt returns the population density of one cell.
func (m *CityMap) PopulationAt(x, y int) float64 {
	if !m.inBounds(x, y) {
		return 0
	}
	return m.density[m.index(x, y)]
}

// PopulationAround sums population density within radius of center.
func (m *CityMap) PopulationAround(center models.Location, radius float64) float64 {
	x0, x1 := m.clampX(center.X-radius), m.clampX(center.X+radius)
	y0, y1 := m.clampY(center.Y-radius), m.clampY(center.Y+radius)
	var sum float64
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			if Distance(center, models.Location{X: float64(x), Y: float64(y)}) <= radius {
				sum += m.density[m.index(x, y)]
			}
		}
	}
	return sum
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RoadIDs lists road lines in layout order.
func (m *CityMap) RoadIDs() []string {
	out := make([]string, 0, len(m.roadLines))
	for _, r := range m.roadLines {
		out = append(out, r.id)
	}
	return out
}

// HasRoad reports whether id names a road line.
func (m *CityMap) HasRoad(id string) bool {
	_, ok := m.roadLine(id)
	return ok
}

func (m *CityMap) roadLine(id string) (roadLine, bool) {
	for _, r := range m.roadLines {
		if r.id == id {
			return r, true
		}
	}
	return roadLine{}, false
}

// ScaleRoadTraffic multiplies the density of every cell of a road line by factor.
func (m *CityMap) ScaleRoadTraffic(id string, factor float64) bool {
	r, ok := m.roadLine(id)
	if !ok {
		return false
	}
	for off := 0; off < r.width; off++ {
		if r.axisX {
			x := r.from + off
			for y := 0; y < m.height; y++ {
				if m.inBounds(x, y) {
					i := m.index(x, y)
					m.traffic[i] = clampFloat(m.traffic[i]*factor, 0, 1)
				}
			}
			continue
		}
		y := r.from + off
		for x := 0; x < m.width; x++ {
			if m.inBounds(x, y) {
				i := m.index(x, y)
				m.traffic[i] = clampFloat(m.traffic[i]*factor, 0, 1)
			}
		}
	}
	return true
}

func roadID(axisX bool, n int) string {
	if axisX {
		return fmt.Sprintf("road_x_%d", n)
	}
	return fmt.Sprintf("road_y_%d", n)
}

// Congestion labels for a mean traffic density.
const (
	CongestionLight    = "light"
	CongestionModerate = "moderate"
	CongestionHeavy    = "heavy"
)

// CongestionLabel classifies mean density: light below 0.3, heavy above 0.7.
func CongestionLabel(mean float64) string {
	switch {
	case mean < 0.3:
		return CongestionLight
	case mean > 0.7:
		return CongestionHeavy
	default:
		return CongestionModerate
	}
}

// RoadsNear lists road lines passing within radius of loc.
func (m *CityMap) RoadsNear(loc models.Location, radius float64) []string {
	var out []string
	for _, r := range m.roadLines {
		center := float64(r.from) + float64(r.width)/2
		v := loc.Y
		if r.axisX {
			v = loc.X
		}
		if math.Abs(v-center) <= radius {
			out = append(out, r.id)
		}
	}
	return out
}
