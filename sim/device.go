package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Position is a 2D coordinate used for clustering and distance-based
// latency/scoring calculations.
type Position struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two positions.
func (p Position) Distance(q Position) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Role is a device's position within its cell.
type Role int

const (
	Member Role = iota
	Master
)

func (r Role) String() string {
	if r == Master {
		return "master"
	}
	return "member"
}

// ResourceHandle is the narrow, non-owning view of a FogDevice that its
// Scheduler/Monitor/Communicator submodules are given instead of a full
// back-pointer, per spec.md §9's cyclic-ownership strategy: submodules can
// allocate/release MIPS and inspect capacity, but cannot reach into device
// topology state or other submodules.
type ResourceHandle interface {
	ID() string
	TotalMIPS() float64
	AvailableMIPS() float64
	Allocate(mips float64)
	Release(mips float64)
	MaxQueue() int
	IsLogEnabled() bool
	RAM() float64
	Storage() float64
	Bandwidth() float64
	Position() Position
}

// FogDevice is a fixed-capacity compute node: static resource totals,
// dynamic utilization, cell membership, and its owned submodules.
type FogDevice struct {
	id  string
	Pos Position

	Capacity  float64 // total_mips
	ram       float64
	storage   float64
	bandwidth float64
	MaxQ      int

	availableMIPS float64

	CellID      int // -1 until clustering assigns it
	Role        Role
	CellMembers []string // other device ids sharing this cell

	Received int

	Monitor      *Monitor
	Scheduler    *Scheduler
	Communicator *Communicator

	logEnabled bool
}

// NewFogDevice constructs a FogDevice with full available MIPS and owned
// submodules wired via the narrow ResourceHandle, not a full back-pointer.
func NewFogDevice(id string, pos Position, totalMIPS, ram, storage, bandwidth float64, maxQueue int) (*FogDevice, error) {
	if totalMIPS <= 0 {
		return nil, fmt.Errorf("fog device %s: total_mips must be positive, got %f", id, totalMIPS)
	}
	if maxQueue <= 0 {
		return nil, fmt.Errorf("fog device %s: max_queue must be positive, got %d", id, maxQueue)
	}
	d := &FogDevice{
		id:            id,
		Pos:           pos,
		Capacity:      totalMIPS,
		ram:           ram,
		storage:       storage,
		bandwidth:     bandwidth,
		MaxQ:          maxQueue,
		availableMIPS: totalMIPS,
		CellID:        -1,
		Role:          Member,
		logEnabled:    true,
	}
	d.Monitor = NewMonitor(d)
	d.Scheduler = NewScheduler(d)
	d.Communicator = NewCommunicator(d)
	return d, nil
}

// ResourceHandle implementation.

func (d *FogDevice) ID() string             { return d.id }
func (d *FogDevice) TotalMIPS() float64     { return d.Capacity }
func (d *FogDevice) AvailableMIPS() float64 { return d.availableMIPS }
func (d *FogDevice) MaxQueue() int          { return d.MaxQ }
func (d *FogDevice) IsLogEnabled() bool     { return d.logEnabled }
func (d *FogDevice) RAM() float64           { return d.ram }
func (d *FogDevice) Storage() float64       { return d.storage }
func (d *FogDevice) Bandwidth() float64     { return d.bandwidth }
func (d *FogDevice) Position() Position     { return d.Pos }

// Allocate reserves mips MI/s of capacity for an executing task. Panics if
// it would drive available_mips negative — an invariant violation is a
// programmer error per spec.md §7, not a recoverable condition.
func (d *FogDevice) Allocate(mips float64) {
	if mips > d.availableMIPS+1e-6 {
		panic(fmt.Sprintf("fog device %s: allocate(%f) exceeds available_mips(%f)", d.id, mips, d.availableMIPS))
	}
	d.availableMIPS -= mips
	if d.availableMIPS < 0 {
		d.availableMIPS = 0
	}
}

// Release returns mips MI/s of capacity on task completion or failure.
func (d *FogDevice) Release(mips float64) {
	d.availableMIPS += mips
	if d.availableMIPS > d.Capacity {
		d.availableMIPS = d.Capacity
	}
}

// Utilization returns the fraction of TotalMIPS currently in use, in [0,1].
func (d *FogDevice) Utilization() float64 {
	if d.Capacity <= 0 {
		return 0
	}
	u := 1 - d.availableMIPS/d.Capacity
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	return u
}

// Coordinates returns the device's position, implementing policy.Device.
func (d *FogDevice) Coordinates() (float64, float64) { return d.Pos.X, d.Pos.Y }

// Cell returns the device's cell id, implementing policy.Device.
func (d *FogDevice) Cell() int { return d.CellID }

// IsMaster reports whether the device is its cell's master, implementing
// policy.Device.
func (d *FogDevice) IsMaster() bool { return d.Role == Master }

// HasResources reports whether the device can immediately dispatch a task
// of the given size (size <= available_mips); it does not check queue
// capacity — that is Scheduler.Admit's job.
func (d *FogDevice) HasResources(size int) bool {
	return float64(size) <= d.availableMIPS
}

// ReceiveTask is the Communicator's delivery entry point: it attempts
// admission via the device's own Scheduler and bumps Received regardless
// of outcome (spec.md §4.3: the communicator always counts the attempt).
func (d *FogDevice) ReceiveTask(t *Task) bool {
	d.Received++
	ok := d.Scheduler.Admit(t)
	if ok && d.logEnabled {
		logrus.Debugf("fog %s: admitted task %s (size=%d urgent=%v)", d.id, t.ID, t.Size, t.Urgent)
	}
	return ok
}

// IoTDevice is a task source bound to the nearest FogDevice at build time.
type IoTDevice struct {
	ID    string
	Pos   Position
	FogID string
}

// NewIoTDevice creates an IoTDevice bound to the given fog device id.
func NewIoTDevice(id string, pos Position, fogID string) *IoTDevice {
	return &IoTDevice{ID: id, Pos: pos, FogID: fogID}
}

// NearestFog returns the id of the closest device in fogs by Euclidean
// distance to pos; ties favor the earlier device in fogs (stable,
// deterministic), matching the tie-break convention used elsewhere in the
// simulator (spec.md §4.1).
func NearestFog(pos Position, fogs []*FogDevice) string {
	if len(fogs) == 0 {
		return ""
	}
	best := fogs[0]
	bestDist := pos.Distance(best.Pos)
	for _, f := range fogs[1:] {
		d := pos.Distance(f.Pos)
		if d < bestDist {
			bestDist = d
			best = f
		}
	}
	return best.ID()
}
