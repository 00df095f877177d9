package sim

import "github.com/fogsim/offload-sim/sim/adapters"

// Communicator accounts for inter-device messaging: status broadcasts and
// task offload transfers. Every call increments MessageCount. owner is a
// narrow ResourceHandle, not a back-pointer to the owning FogDevice, per
// spec.md §9's no-reference-cycle design.
type Communicator struct {
	owner        ResourceHandle
	network      adapters.Network
	security     adapters.Security
	MessageCount int
	TotalEnergyJ float64
}

// NewCommunicator creates a Communicator for the given owning device, wired
// to the reference Network/Security adapters (spec.md §6).
func NewCommunicator(d *FogDevice) *Communicator {
	return &Communicator{
		owner:    d,
		network:  adapters.NewDefaultNetwork(),
		security: adapters.NewDefaultSecurity(),
	}
}

// SendStatus delivers a ResourceStatus snapshot to target's Monitor.
func (c *Communicator) SendStatus(target *FogDevice, status ResourceStatus) {
	c.MessageCount++
	target.Monitor.UpdateNeighbor(status)
}

// OffloadTask delivers t to target via the Network and Security adapters.
// The transmission's energy cost is charged to TotalEnergyJ regardless of
// outcome, since the physical transfer happens whether or not target
// admits the task, but t's response time only accumulates transmission
// and authentication latency for the path actually taken: a rejected or
// unauthenticated attempt leaves t.ResponseTime untouched (spec.md §9
// Open Question #3). There is no retry; a rejection is final for this
// call (spec.md §4.3/§7).
func (c *Communicator) OffloadTask(target *FogDevice, t *Task) bool {
	c.MessageCount++

	ok, authOverheadMs := c.security.Authenticate(c.owner.ID(), target.ID())
	if !ok {
		return false
	}

	distance := c.owner.Position().Distance(target.Pos)
	result := c.network.SimulateTransmission(t.Size, distance)
	c.TotalEnergyJ += result.EnergyJ
	if !result.Success {
		return false
	}

	if !target.ReceiveTask(t) {
		return false
	}
	t.AddResponseTime(result.LatencyMs + authOverheadMs)
	return true
}
