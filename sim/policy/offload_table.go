package policy

import "sort"

// OffloadTable is a per-cell map from source device id to target device
// id, as described in spec.md §3.
type OffloadTable map[string]string

// buildRing sorts members by TotalMIPS descending and links member[i] to
// member[i+1 mod n], forming a Hamiltonian ring over the cell. Single-
// device cells produce no entries (there is no partner to offload to).
// Ties in TotalMIPS are broken by device id for determinism.
func buildRing(members []Device) OffloadTable {
	table := OffloadTable{}
	if len(members) < 2 {
		return table
	}
	sorted := sortedByCapacityDesc(members)
	for i, m := range sorted {
		next := sorted[(i+1)%len(sorted)]
		table[m.ID()] = next.ID()
	}
	return table
}

// buildMasterAware implements the StaticOffloadTable layout of spec.md §3:
// when a master exists, master -> most-capable member, each remaining
// member -> next-by-capacity, and the last member -> master. When no
// master exists, it falls back to the plain ring.
func buildMasterAware(members []Device) OffloadTable {
	if len(members) < 2 {
		return OffloadTable{}
	}
	var master Device
	rest := make([]Device, 0, len(members))
	for _, m := range members {
		if m.IsMaster() {
			master = m
		} else {
			rest = append(rest, m)
		}
	}
	if master == nil {
		return buildRing(members)
	}
	if len(rest) == 0 {
		return OffloadTable{}
	}
	sortedRest := sortedByCapacityDesc(rest)

	table := OffloadTable{}
	table[master.ID()] = sortedRest[0].ID()
	for i := 0; i < len(sortedRest)-1; i++ {
		table[sortedRest[i].ID()] = sortedRest[i+1].ID()
	}
	table[sortedRest[len(sortedRest)-1].ID()] = master.ID()
	return table
}

func sortedByCapacityDesc(members []Device) []Device {
	sorted := make([]Device, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalMIPS() != sorted[j].TotalMIPS() {
			return sorted[i].TotalMIPS() > sorted[j].TotalMIPS()
		}
		return sorted[i].ID() < sorted[j].ID()
	})
	return sorted
}

// groupByCell partitions devices by their Cell() id.
func groupByCell(devices []Device) map[int][]Device {
	groups := make(map[int][]Device)
	for _, d := range devices {
		groups[d.Cell()] = append(groups[d.Cell()], d)
	}
	return groups
}
