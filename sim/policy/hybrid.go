package policy

import (
	"math"
	"math/rand"
)

// loadWeightUrgent / loadWeightNonUrgent are the w_load blend weights for
// Hybrid's distance-vs-load scoring (spec.md §4.5.3): urgent tasks weight
// distance more heavily (w_load small), non-urgent tasks weight load more
// heavily (w_load large).
const (
	loadWeightUrgent    = 0.3
	loadWeightNonUrgent = 0.7
	distanceNormalizer  = 1000.0
)

// Hybrid (HybOff) is cell-restricted and master-biased: masters keep work
// local while under 80% utilization, and non-urgent tasks prefer the
// static ring with a dynamic-scoring fallback (spec.md §4.5.3).
type Hybrid struct {
	tables map[int]OffloadTable
	rng    *rand.Rand
}

// NewHybrid creates a Hybrid policy with its own seeded random stream
// (never drawn from; Hybrid's scoring is deterministic, and the stream
// only keeps the constructor's shape in parity with Dynamic's).
func NewHybrid(seed int64) *Hybrid {
	return &Hybrid{tables: map[int]OffloadTable{}, rng: rand.New(rand.NewSource(seed))}
}

func (h *Hybrid) UpdatePolicy(devices []Device) {
	tables := map[int]OffloadTable{}
	for cell, members := range groupByCell(devices) {
		tables[cell] = buildMasterAware(members)
	}
	h.tables = tables
}

func (h *Hybrid) ShouldOffload(src Device, task TaskInfo) bool {
	if !src.HasResources(task.TaskSize()) {
		return true
	}
	if src.IsMaster() {
		return src.Utilization() >= 0.8
	}
	if task.IsUrgent() {
		return false // urgent tasks stay local whenever they fit
	}
	return src.Utilization() > 0.5
}

func (h *Hybrid) SelectTarget(src Device, task TaskInfo, candidates []Device) string {
	sameCell := make([]Device, 0, len(candidates))
	for _, c := range candidates {
		if c.ID() != src.ID() && c.Cell() == src.Cell() {
			sameCell = append(sameCell, c)
		}
	}
	if len(sameCell) == 0 {
		return NoTarget
	}

	if task.IsUrgent() {
		return h.scoredSelect(src, task, sameCell, loadWeightUrgent)
	}

	if table, ok := h.tables[src.Cell()]; ok {
		if partnerID, ok := table[src.ID()]; ok {
			if partner, found := findDevice(partnerID, sameCell); found && partner.HasResources(task.TaskSize()) {
				return partner.ID()
			}
		}
	}
	return h.scoredSelect(src, task, sameCell, loadWeightNonUrgent)
}

// scoredSelect picks the lowest-scoring candidate under
// score = wLoad*util + (1-wLoad)*(distance/1000), ties broken by id.
func (h *Hybrid) scoredSelect(src Device, task TaskInfo, candidates []Device, wLoad float64) string {
	eligible := make([]Device, 0, len(candidates))
	for _, c := range candidates {
		if c.HasResources(task.TaskSize()) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return NoTarget
	}
	sx, sy := src.Coordinates()

	best := eligible[0]
	bestScore := hybridScore(sx, sy, best, wLoad)
	for _, c := range eligible[1:] {
		score := hybridScore(sx, sy, c, wLoad)
		if score < bestScore || (score == bestScore && c.ID() < best.ID()) {
			bestScore = score
			best = c
		}
	}
	return best.ID()
}

func hybridScore(sx, sy float64, d Device, wLoad float64) float64 {
	dx, dy := d.Coordinates()
	ddx := sx - dx
	ddy := sy - dy
	dist := math.Sqrt(ddx*ddx + ddy*ddy)
	return wLoad*d.Utilization() + (1-wLoad)*(dist/distanceNormalizer)
}
