package policy

// Static (SoA) assigns a circular offload ring per cell at
// UpdatePolicy time and offloads once the source crosses 80% utilization
// (spec.md §4.5.1).
type Static struct {
	tables map[int]OffloadTable // cell id -> ring
}

// NewStatic creates an empty Static policy; call UpdatePolicy before use.
func NewStatic() *Static {
	return &Static{tables: map[int]OffloadTable{}}
}

func (s *Static) UpdatePolicy(devices []Device) {
	tables := map[int]OffloadTable{}
	for cell, members := range groupByCell(devices) {
		tables[cell] = buildRing(members)
	}
	s.tables = tables
}

func (s *Static) ShouldOffload(src Device, _ TaskInfo) bool {
	return src.Utilization() > 0.8
}

func (s *Static) SelectTarget(src Device, task TaskInfo, candidates []Device) string {
	if table, ok := s.tables[src.Cell()]; ok {
		if partnerID, ok := table[src.ID()]; ok {
			if partner, found := findDevice(partnerID, candidates); found && partner.HasResources(task.TaskSize()) {
				return partner.ID()
			}
		}
	}
	return leastUtilized(candidates)
}
