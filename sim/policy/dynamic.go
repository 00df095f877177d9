package policy

import "math/rand"

// Dynamic (PoA) is stateless and cell-agnostic: every device in the
// simulation is a candidate target regardless of cell membership
// (spec.md §4.5.2, resolving the Open Question in spec.md §9 in favor of
// cell-agnostic Dynamic routing).
type Dynamic struct {
	rng *rand.Rand
}

// NewDynamic creates a Dynamic policy with its own seeded random stream,
// reproducible independent of other subsystems (spec.md §4.7).
func NewDynamic(seed int64) *Dynamic {
	return &Dynamic{rng: rand.New(rand.NewSource(seed))}
}

func (d *Dynamic) UpdatePolicy(_ []Device) {
	// stateless: no-op.
}

// CellAgnostic reports that Dynamic's candidate pool is every device in
// the simulation, not just src's cell-mates (spec.md §9 Open Question,
// resolved in favor of cell-agnostic Dynamic routing). Detected via type
// assertion by the controller when assembling candidates.
func (d *Dynamic) CellAgnostic() bool { return true }

func (d *Dynamic) ShouldOffload(src Device, task TaskInfo) bool {
	util := src.Utilization()
	if util > 0.8 {
		return true
	}
	if !src.HasResources(task.TaskSize()) {
		return true
	}
	if !task.IsUrgent() && util > 0.3 && util <= 0.8 {
		return d.rng.Float64() < 0.7
	}
	return false
}

func (d *Dynamic) SelectTarget(src Device, task TaskInfo, candidates []Device) string {
	eligible := make([]Device, 0, len(candidates))
	for _, c := range candidates {
		if c.ID() == src.ID() {
			continue
		}
		if !c.HasResources(task.TaskSize()) {
			continue
		}
		if c.Utilization() >= 0.8 {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return NoTarget
	}
	if task.IsUrgent() {
		x, y := src.Coordinates()
		return nearest(x, y, eligible)
	}
	return leastUtilized(eligible)
}
