package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a minimal Device implementation for policy unit tests,
// decoupled from the sim package's FogDevice per the narrow-interface
// design (spec.md §9).
type fakeDevice struct {
	id         string
	util       float64
	totalMIPS  float64
	available  float64
	x, y       float64
	cell       int
	isMaster   bool
}

func (f *fakeDevice) ID() string                { return f.id }
func (f *fakeDevice) Utilization() float64      { return f.util }
func (f *fakeDevice) HasResources(size int) bool { return float64(size) <= f.available }
func (f *fakeDevice) TotalMIPS() float64        { return f.totalMIPS }
func (f *fakeDevice) Coordinates() (float64, float64) { return f.x, f.y }
func (f *fakeDevice) Cell() int                 { return f.cell }
func (f *fakeDevice) IsMaster() bool            { return f.isMaster }

type fakeTask struct {
	id     string
	urgent bool
	size   int
}

func (f *fakeTask) TaskID() string  { return f.id }
func (f *fakeTask) IsUrgent() bool  { return f.urgent }
func (f *fakeTask) TaskSize() int   { return f.size }

func TestNew_ConstructsEachKnownPolicy(t *testing.T) {
	assert.IsType(t, &Static{}, New(NameStatic, 1))
	assert.IsType(t, &Dynamic{}, New(NameDynamic, 1))
	assert.IsType(t, &Hybrid{}, New(NameHybrid, 1))
}

func TestNew_PanicsOnUnknownName(t *testing.T) {
	assert.Panics(t, func() { New(Name("bogus"), 1) })
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("static"))
	assert.True(t, IsValidName("dynamic"))
	assert.True(t, IsValidName("hybrid"))
	assert.False(t, IsValidName("bogus"))
}

func TestLeastUtilized_PicksLowestUtilTieBrokenByID(t *testing.T) {
	a := &fakeDevice{id: "a", util: 0.5, available: 1000}
	b := &fakeDevice{id: "b", util: 0.3, available: 1000}
	c := &fakeDevice{id: "c", util: 0.3, available: 1000}
	got := leastUtilized([]Device{a, b, c})
	assert.Equal(t, "b", got)
}

func TestLeastUtilized_EmptyReturnsNoTarget(t *testing.T) {
	assert.Equal(t, NoTarget, leastUtilized(nil))
}

func TestNearest_PicksClosestTieBrokenByID(t *testing.T) {
	a := &fakeDevice{id: "a", x: 0, y: 0}
	b := &fakeDevice{id: "b", x: 10, y: 0}
	got := nearest(9, 0, []Device{a, b})
	assert.Equal(t, "b", got)
}

func TestGroupByCell_PartitionsDevices(t *testing.T) {
	a := &fakeDevice{id: "a", cell: 0}
	b := &fakeDevice{id: "b", cell: 1}
	c := &fakeDevice{id: "c", cell: 0}
	groups := groupByCell([]Device{a, b, c})
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
}

func TestBuildRing_SingleMemberIsEmpty(t *testing.T) {
	a := &fakeDevice{id: "a"}
	table := buildRing([]Device{a})
	assert.Empty(t, table)
}

func TestBuildRing_LinksByDescendingCapacityThenWrapsAround(t *testing.T) {
	a := &fakeDevice{id: "a", totalMIPS: 500}
	b := &fakeDevice{id: "b", totalMIPS: 1500}
	c := &fakeDevice{id: "c", totalMIPS: 1000}
	table := buildRing([]Device{a, b, c})
	assert.Equal(t, "c", table["b"]) // b (1500) -> c (1000)
	assert.Equal(t, "a", table["c"]) // c (1000) -> a (500)
	assert.Equal(t, "b", table["a"]) // a (500) -> wraps to b (1500)
}

func TestBuildMasterAware_RoutesThroughMaster(t *testing.T) {
	master := &fakeDevice{id: "m", totalMIPS: 200, isMaster: true}
	r1 := &fakeDevice{id: "r1", totalMIPS: 1000}
	r2 := &fakeDevice{id: "r2", totalMIPS: 500}
	table := buildMasterAware([]Device{master, r1, r2})
	assert.Equal(t, "r1", table["m"])
	assert.Equal(t, "r2", table["r1"])
	assert.Equal(t, "m", table["r2"])
}

func TestBuildMasterAware_FallsBackToRingWithoutMaster(t *testing.T) {
	a := &fakeDevice{id: "a", totalMIPS: 500}
	b := &fakeDevice{id: "b", totalMIPS: 1000}
	table := buildMasterAware([]Device{a, b})
	assert.Equal(t, buildRing([]Device{a, b}), table)
}
