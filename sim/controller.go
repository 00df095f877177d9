package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/fogsim/offload-sim/sim/policy"
)

// cellAgnostic is implemented by policies (Dynamic) whose candidate pool
// is every device in the simulation rather than just src's cell-mates.
type cellAgnostic interface {
	CellAgnostic() bool
}

// Controller orchestrates, per task, the decision of whether to offload
// and to where, and periodically refreshes the active policy's cached
// state (spec.md §4.6).
type Controller struct {
	devices map[string]*FogDevice
	allIDs  []string // stable iteration order
	active  policy.OffloadingPolicy

	refreshTicks int
	tick         int64

	Dropped   int
	Offloaded int
}

// NewController creates a Controller over devices, configuring and
// immediately priming the given policy.
func NewController(devices []*FogDevice, active policy.OffloadingPolicy, refreshTicks int) *Controller {
	c := &Controller{
		devices:      make(map[string]*FogDevice, len(devices)),
		allIDs:       make([]string, 0, len(devices)),
		active:       active,
		refreshTicks: refreshTicks,
	}
	for _, d := range devices {
		c.devices[d.ID()] = d
		c.allIDs = append(c.allIDs, d.ID())
	}
	c.active.UpdatePolicy(c.deviceViews())
	return c
}

func (c *Controller) deviceViews() []policy.Device {
	views := make([]policy.Device, 0, len(c.allIDs))
	for _, id := range c.allIDs {
		views = append(views, c.devices[id])
	}
	return views
}

// ProcessTask routes a freshly-generated task from its bound IoTDevice's
// fog device, per spec.md §4.6: ask the policy, offload or stay local,
// fall back locally on any rejection, and count a final drop if both
// paths fail.
func (c *Controller) ProcessTask(srcFog *FogDevice, t *Task) {
	if !c.active.ShouldOffload(srcFog, t) {
		if srcFog.ReceiveTask(t) {
			return
		}
		c.Dropped++
		return
	}

	candidates := c.candidatesFor(srcFog)
	targetID := c.active.SelectTarget(srcFog, t, candidates)
	if targetID != policy.NoTarget && targetID != srcFog.ID() {
		if target, ok := c.devices[targetID]; ok {
			if srcFog.Communicator.OffloadTask(target, t) {
				c.Offloaded++
				return
			}
		}
	}

	// Fall back to local admission.
	if srcFog.ReceiveTask(t) {
		return
	}
	c.Dropped++
}

func (c *Controller) candidatesFor(src *FogDevice) []policy.Device {
	if ca, ok := c.active.(cellAgnostic); ok && ca.CellAgnostic() {
		return c.deviceViews()
	}
	views := make([]policy.Device, 0, len(src.CellMembers))
	for _, id := range src.CellMembers {
		if d, ok := c.devices[id]; ok {
			views = append(views, d)
		}
	}
	return views
}

// UpdateStatus refreshes the active policy's cached state every
// refreshTicks ticks (spec.md §4.6).
func (c *Controller) UpdateStatus() {
	c.tick++
	if c.tick%int64(c.refreshTicks) != 0 {
		return
	}
	c.active.UpdatePolicy(c.deviceViews())
	logrus.Debugf("controller: policy refreshed at tick %d", c.tick)
}
