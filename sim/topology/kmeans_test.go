package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusterOfThreeTightGroups() []Point {
	return []Point{
		{ID: "a1", X: 0, Y: 0}, {ID: "a2", X: 1, Y: 0}, {ID: "a3", X: 0, Y: 1},
		{ID: "b1", X: 100, Y: 100}, {ID: "b2", X: 101, Y: 100}, {ID: "b3", X: 100, Y: 101},
		{ID: "c1", X: 200, Y: 0}, {ID: "c2", X: 201, Y: 0}, {ID: "c3", X: 200, Y: 1},
	}
}

func TestRun_RejectsInvalidK(t *testing.T) {
	_, err := Run(clusterOfThreeTightGroups(), 0, 1)
	assert.Error(t, err)
}

func TestRun_RejectsEmptyPoints(t *testing.T) {
	_, err := Run(nil, 3, 1)
	assert.Error(t, err)
}

func TestRun_EveryPointAssignedExactlyOnce(t *testing.T) {
	points := clusterOfThreeTightGroups()
	result, err := Run(points, 3, 42)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, cell := range result.Cells {
		for _, id := range cell.Members {
			assert.False(t, seen[id], "point %s assigned to more than one cell", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, len(points))
	assert.Len(t, result.CellOf, len(points))
}

func TestRun_SeparatesTightGroupsIntoDistinctCells(t *testing.T) {
	points := clusterOfThreeTightGroups()
	result, err := Run(points, 3, 42)
	require.NoError(t, err)

	assert.Equal(t, result.CellOf["a1"], result.CellOf["a2"])
	assert.Equal(t, result.CellOf["a1"], result.CellOf["a3"])
	assert.Equal(t, result.CellOf["b1"], result.CellOf["b2"])
	assert.NotEqual(t, result.CellOf["a1"], result.CellOf["b1"])
	assert.NotEqual(t, result.CellOf["b1"], result.CellOf["c1"])
}

func TestRun_IsDeterministicForFixedSeed(t *testing.T) {
	points := clusterOfThreeTightGroups()
	r1, err := Run(points, 3, 42)
	require.NoError(t, err)
	r2, err := Run(points, 3, 42)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestRun_EveryNonEmptyCellHasAMaster(t *testing.T) {
	points := clusterOfThreeTightGroups()
	result, err := Run(points, 3, 7)
	require.NoError(t, err)
	for _, cell := range result.Cells {
		if len(cell.Members) > 0 {
			assert.NotEmpty(t, cell.MasterID)
			assert.Contains(t, cell.Members, cell.MasterID)
		}
	}
}

func TestRun_SinglePointPerCellIsOwnMaster(t *testing.T) {
	points := []Point{{ID: "solo", X: 5, Y: 5}}
	result, err := Run(points, 1, 1)
	require.NoError(t, err)
	require.Len(t, result.Cells, 1)
	assert.Equal(t, "solo", result.Cells[0].MasterID)
}

func TestNearestCentroid_TiesFavorLowestIndex(t *testing.T) {
	centroids := [][2]float64{{0, 0}, {10, 0}}
	p := Point{ID: "mid", X: 5, Y: 0}
	assert.Equal(t, 0, nearestCentroid(p, centroids))
}

func TestBoundingBox_DegenerateSameCoordinateIsNudged(t *testing.T) {
	points := []Point{{ID: "a", X: 5, Y: 5}, {ID: "b", X: 5, Y: 5}}
	minX, maxX, minY, maxY := boundingBox(points)
	assert.Equal(t, 5.0, minX)
	assert.Equal(t, 6.0, maxX)
	assert.Equal(t, 5.0, minY)
	assert.Equal(t, 6.0, maxY)
}
