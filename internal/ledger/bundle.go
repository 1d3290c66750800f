package ledger

import (
	"fmt"
	"sort"

	"github.com/shenikar/city_emergency_response/internal/models"
)

// BundleResult reports what OrganizeTeam assigned.
type BundleResult struct {
	Assigned   []string       `json:"assigned"`
	Requested  int            `json:"requested"`
	Shortfall  map[string]int `json:"shortfall,omitempty"`
	RolledBack bool           `json:"rolled_back"`
}

// Complete reports whether every requested resource was assigned.
func (b BundleResult) Complete() bool {
	return len(b.Shortfall) == 0
}

// OrganizeTeam greedily assigns, for each (kind, count) pair, up to count
// available matching resources to unitID in ledger order. Pairs are handled
// in sorted key order. When the bundle is short the call returns an error
// wrapping ErrResourceUnavailable; under PolicyPartial the assigned resources
// are kept, under PolicyRollback they are released again.
func (l *Ledger) OrganizeTeam(unitID string, requirements map[string]int) (BundleResult, error) {
	if unitID == "" {
		return BundleResult{}, fmt.Errorf("ledger: organize team: %w", models.ErrEmptyUnitID)
	}
	keys := make([]string, 0, len(requirements))
	for k := range requirements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l.mu.Lock()
	defer l.mu.Unlock()

	res := BundleResult{Shortfall: make(map[string]int)}
	for _, key := range keys {
		want := requirements[key]
		if want <= 0 {
			continue
		}
		res.Requested += want
		got := 0
		for _, id := range l.order {
			if got == want {
				break
			}
			r := l.resources[id]
			if r.Status != models.StatusAvailable || !MatchesKind(*r, key) {
				continue
			}
			if err := l.assignLocked(id, unitID); err != nil {
				continue
			}
			res.Assigned = append(res.Assigned, id)
			got++
		}
		if got < want {
			res.Shortfall[key] = want - got
		}
	}

	if res.Complete() {
		res.Shortfall = nil
		return res, nil
	}
	if l.policy == PolicyRollback {
		for _, id := range res.Assigned {
			_ = l.releaseLocked(id)
		}
		res.RolledBack = true
	}
	return res, fmt.Errorf("ledger: unit %s got %d of %d requested resources: %w",
		unitID, len(res.Assigned), res.Requested, models.ErrResourceUnavailable)
}
