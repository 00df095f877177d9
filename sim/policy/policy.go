// Package policy implements the OffloadingPolicy contract (Static, Dynamic,
// Hybrid) described in spec.md §4.5/§6. Policies are pure functions over
// the narrow Device/TaskInfo views handed to them by the controller; they
// never mutate device state, matching the teacher's RoutingPolicy/
// AdmissionPolicy contract in sim/routing.go and sim/admission.go.
package policy

import "fmt"

// Device is the read-only view of a FogDevice a policy is allowed to see.
// Implemented implicitly by *sim.FogDevice.
type Device interface {
	ID() string
	Utilization() float64
	HasResources(size int) bool
	TotalMIPS() float64
	Coordinates() (x, y float64)
	Cell() int
	IsMaster() bool
}

// TaskInfo is the read-only view of a Task a policy is allowed to see.
// Implemented implicitly by *sim.Task.
type TaskInfo interface {
	TaskID() string
	IsUrgent() bool
	TaskSize() int
}

// NoTarget is returned by SelectTarget when no candidate is chosen.
const NoTarget = ""

// OffloadingPolicy decides whether and where a task should be offloaded.
// Implementations must be pure over their inputs and the current
// snapshot; they must not mutate device state (spec.md §4.5).
type OffloadingPolicy interface {
	// ShouldOffload reports whether src should attempt to offload task
	// rather than run it locally.
	ShouldOffload(src Device, task TaskInfo) bool

	// SelectTarget picks a device id from candidates to receive task, or
	// NoTarget if none is suitable.
	SelectTarget(src Device, task TaskInfo, candidates []Device) string

	// UpdatePolicy is called at controller (re)configuration time so
	// stateful policies (Static, Hybrid) can refresh cached tables from
	// the latest device/utilization distribution.
	UpdatePolicy(devices []Device)
}

// Name identifies an OffloadingPolicy kind.
type Name string

const (
	NameStatic  Name = "static"
	NameDynamic Name = "dynamic"
	NameHybrid  Name = "hybrid"
)

// New constructs an OffloadingPolicy by name. seed drives the Dynamic
// policy's reproducible random stream per spec.md §4.7. Panics on an
// unrecognized name, matching the teacher's NewRoutingPolicy/
// NewAdmissionPolicy fail-fast convention for programmer error.
func New(name Name, seed int64) OffloadingPolicy {
	switch name {
	case NameStatic:
		return NewStatic()
	case NameDynamic:
		return NewDynamic(seed)
	case NameHybrid:
		return NewHybrid(seed)
	default:
		panic(fmt.Sprintf("policy: unknown offloading policy %q", name))
	}
}

// IsValidName reports whether name is a recognized policy kind.
func IsValidName(name string) bool {
	switch Name(name) {
	case NameStatic, NameDynamic, NameHybrid:
		return true
	default:
		return false
	}
}

// leastUtilized returns the id of the candidate with the lowest
// Utilization, ties broken by ID (lexicographically lowest wins).
func leastUtilized(candidates []Device) string {
	if len(candidates) == 0 {
		return NoTarget
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Utilization() < best.Utilization() ||
			(c.Utilization() == best.Utilization() && c.ID() < best.ID()) {
			best = c
		}
	}
	return best.ID()
}

// nearest returns the id of the candidate closest to (x,y), ties broken
// by ID.
func nearest(x, y float64, candidates []Device) string {
	if len(candidates) == 0 {
		return NoTarget
	}
	best := candidates[0]
	bestDist := sqDist(x, y, best)
	for _, c := range candidates[1:] {
		d := sqDist(x, y, c)
		if d < bestDist || (d == bestDist && c.ID() < best.ID()) {
			bestDist = d
			best = c
		}
	}
	return best.ID()
}

func sqDist(x, y float64, d Device) float64 {
	dx, dy := d.Coordinates()
	ddx := x - dx
	ddy := y - dy
	return ddx*ddx + ddy*ddy
}

func findDevice(id string, candidates []Device) (Device, bool) {
	for _, c := range candidates {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}
