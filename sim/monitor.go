package sim

// LoadBucket discretizes utilization per spec.md's GLOSSARY cutoffs.
type LoadBucket int

const (
	VeryLow LoadBucket = iota
	Low
	Medium
	High
)

func (b LoadBucket) String() string {
	switch b {
	case VeryLow:
		return "very_low"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// BucketFor discretizes a utilization value in [0,1] into a LoadBucket
// using the cutoffs VeryLow<0.3, Low<0.5, Medium<0.8, High>=0.8.
func BucketFor(util float64) LoadBucket {
	switch {
	case util < 0.3:
		return VeryLow
	case util < 0.5:
		return Low
	case util < 0.8:
		return Medium
	default:
		return High
	}
}

// ResourceStatus is a point-in-time snapshot of a device's resource state,
// exchanged between devices via the Communicator and used by policies.
type ResourceStatus struct {
	DeviceID          string
	CPUUtilization    float64
	AvailableRAM      float64
	AvailableStorage  float64
	AvailableBandwidth float64
	Bucket            LoadBucket
}

// Monitor exposes a device's own resource snapshot and caches the
// last-known snapshots other devices send it via Communicator.SendStatus.
// Snapshots may be stale; the simulator tolerates last-known data per
// spec.md §4.2. The offloading policies do not read this cache: Hybrid and
// the other policies score candidates from each device's live utilization.
type Monitor struct {
	owner     ResourceHandle
	neighbors map[string]ResourceStatus
}

// NewMonitor creates a Monitor for the given owning device.
func NewMonitor(d *FogDevice) *Monitor {
	return &Monitor{
		owner:     d,
		neighbors: make(map[string]ResourceStatus),
	}
}

// Snapshot returns the current ResourceStatus of the owning device.
func (m *Monitor) Snapshot() ResourceStatus {
	var util float64
	if total := m.owner.TotalMIPS(); total > 0 {
		util = (total - m.owner.AvailableMIPS()) / total
	}
	return ResourceStatus{
		DeviceID:           m.owner.ID(),
		CPUUtilization:     util,
		AvailableRAM:       m.owner.RAM(),
		AvailableStorage:   m.owner.Storage(),
		AvailableBandwidth: m.owner.Bandwidth(),
		Bucket:             BucketFor(util),
	}
}

// UpdateNeighbor stores the given status keyed by its device id, overwriting
// any prior snapshot for that device.
func (m *Monitor) UpdateNeighbor(status ResourceStatus) {
	m.neighbors[status.DeviceID] = status
}

// Neighbor returns the last-known status for deviceID, if any.
func (m *Monitor) Neighbor(deviceID string) (ResourceStatus, bool) {
	s, ok := m.neighbors[deviceID]
	return s, ok
}
