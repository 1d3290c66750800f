package ledger

import (
	"strings"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// Predicate selects resources in Query.
type Predicate func(models.Resource) bool

// Filter is a declarative predicate; empty fields match anything.
type Filter struct {
	Type   models.ResourceType
	Kind   string
	Role   string
	Status models.ResourceStatus
	Owner  string
	HomeID string
}

// Match reports whether r satisfies every set field of f.
func (f Filter) Match(r models.Resource) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Kind != "" && !MatchesKind(r, f.Kind) {
		return false
	}
	if f.Role != "" && r.Properties[models.PropRole] != f.Role {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Owner != "" && r.Owner != f.Owner {
		return false
	}
	if f.HomeID != "" && r.HomeID != f.HomeID {
		return false
	}
	return true
}

// Predicate adapts f to a Predicate.
func (f Filter) Predicate() Predicate {
	return f.Match
}

var kindAliases = map[string]string{
	"truck":    "fire_truck",
	"car":      "police_car",
	"medic":    "paramedic",
	"police":   "officer",
	"fireman":  "firefighter",
	"hose_kit": "rescue_equipment",
}

// NormalizeKind turns a requirement key such as "Ambulances" or "trucks"
// into the singular kind stored on resources.
func NormalizeKind(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, " ", "_")
	if strings.HasSuffix(k, "ies") {
		k = strings.TrimSuffix(k, "ies") + "y"
	} else if strings.HasSuffix(k, "s") && !strings.HasSuffix(k, "ss") {
		k = strings.TrimSuffix(k, "s")
	}
	if alias, ok := kindAliases[k]; ok {
		return alias
	}
	return k
}

// MatchesKind reports whether r satisfies a requirement key, matched against
// the resource kind first and its broad type second.
func MatchesKind(r models.Resource, key string) bool {
	k := NormalizeKind(key)
	return r.Kind == k || string(r.Type) == k
}
