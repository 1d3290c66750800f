package taskgraph

import (
	"fmt"

	"github.com/shenikar/city_emergency_response/internal/models"
)

const (
	white = iota
	gray
	black
)

// validate checks that every prerequisite exists and the graph is acyclic.
// Cycles are reported before missing prerequisites so that a task naming
// itself is always a cycle.
func (g *Graph) validate() error {
	colors := make(map[models.TaskID]int, len(g.tasks))
	for _, id := range g.order {
		if colors[id] != white {
			continue
		}
		if cyc, ok := g.findCycle(id, colors); ok {
			return fmt.Errorf("taskgraph: task %d is its own ancestor: %w", cyc, models.ErrCycleDetected)
		}
	}
	for _, id := range g.order {
		for _, p := range g.tasks[id].Prerequisites {
			if _, ok := g.tasks[p]; !ok {
				return fmt.Errorf("taskgraph: task %d requires unknown task %d: %w", id, p, models.ErrTaskNotFound)
			}
		}
	}
	return nil
}

// findCycle walks prerequisite edges depth first; reaching a gray node means
// a back edge.
func (g *Graph) findCycle(id models.TaskID, colors map[models.TaskID]int) (models.TaskID, bool) {
	colors[id] = gray
	for _, p := range g.tasks[id].Prerequisites {
		if _, ok := g.tasks[p]; !ok {
			continue
		}
		switch colors[p] {
		case gray:
			return p, true
		case white:
			if cyc, ok := g.findCycle(p, colors); ok {
				return cyc, true
			}
		}
	}
	colors[id] = black
	return 0, false
}
