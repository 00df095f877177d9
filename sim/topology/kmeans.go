// Package topology implements spatial clustering of fog devices into cells
// and master election, decoupled from the sim package's device types so it
// can be tested and reused independently (spec.md §4.1).
package topology

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// MaxIterations bounds Lloyd's iteration per spec.md §4.1.
const MaxIterations = 100

// ConvergenceEpsilon is the centroid-movement threshold below which the
// algorithm is considered converged.
const ConvergenceEpsilon = 1e-3

// Point is a clusterable device: an opaque id plus a 2D position.
type Point struct {
	ID   string
	X, Y float64
}

// Cell is an immutable (post-clustering) spatial group of devices.
type Cell struct {
	CellID   int
	Centroid [2]float64
	MasterID string   // empty if the cell has no members
	Members  []string // device ids, in input order
}

// Result is the outcome of clustering: which cell each device landed in,
// plus the realized cells (including any empty ones, which carry no
// master per spec.md §4.1).
type Result struct {
	CellOf map[string]int
	Cells  []Cell
}

// Run partitions points into k cells via Lloyd's k-means in 2D, seeded
// deterministically from seed. Centroids are initialized uniformly at
// random within the points' bounding box. Iteration stops when no
// centroid moves more than ConvergenceEpsilon in either coordinate, or
// after MaxIterations. Ties in nearest-centroid assignment favor the
// lowest centroid index (stable, deterministic).
func Run(points []Point, k int, seed int64) (Result, error) {
	if k <= 0 {
		return Result{}, fmt.Errorf("topology: k must be positive, got %d", k)
	}
	if len(points) == 0 {
		return Result{}, fmt.Errorf("topology: no points to cluster")
	}

	rng := rand.New(rand.NewSource(seed))
	minX, maxX, minY, maxY := boundingBox(points)
	centroids := make([][2]float64, k)
	for i := range centroids {
		centroids[i] = [2]float64{
			minX + rng.Float64()*(maxX-minX),
			minY + rng.Float64()*(maxY-minY),
		}
	}

	assignment := make([]int, len(points))
	for iter := 0; iter < MaxIterations; iter++ {
		for i, p := range points {
			assignment[i] = nearestCentroid(p, centroids)
		}

		newCentroids := make([][2]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assignment[i]
			newCentroids[c][0] += p.X
			newCentroids[c][1] += p.Y
			counts[c]++
		}
		maxShift := 0.0
		for c := range newCentroids {
			if counts[c] == 0 {
				newCentroids[c] = centroids[c] // empty cluster keeps its centroid
				continue
			}
			newCentroids[c][0] /= float64(counts[c])
			newCentroids[c][1] /= float64(counts[c])
			shift := floats.Distance(newCentroids[c][:], centroids[c][:], math.Inf(1))
			if shift > maxShift {
				maxShift = shift
			}
		}
		centroids = newCentroids
		if maxShift <= ConvergenceEpsilon {
			break
		}
	}

	cells := make([]Cell, k)
	cellOf := make(map[string]int, len(points))
	for c := range cells {
		cells[c] = Cell{CellID: c, Centroid: centroids[c]}
	}
	for i, p := range points {
		c := assignment[i]
		cells[c].Members = append(cells[c].Members, p.ID)
		cellOf[p.ID] = c
	}
	for c := range cells {
		cells[c].MasterID = electMaster(points, cells[c])
	}

	return Result{CellOf: cellOf, Cells: cells}, nil
}

func boundingBox(points []Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	if minX == maxX {
		maxX = minX + 1
	}
	if minY == maxY {
		maxY = minY + 1
	}
	return
}

// nearestCentroid returns the index of the centroid closest to p, ties
// broken by lowest index.
func nearestCentroid(p Point, centroids [][2]float64) int {
	best := 0
	bestDist := sqDist(p.X, p.Y, centroids[0][0], centroids[0][1])
	for c := 1; c < len(centroids); c++ {
		d := sqDist(p.X, p.Y, centroids[c][0], centroids[c][1])
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func sqDist(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// electMaster returns the id of the member of cell closest to its
// centroid, in input order; empty if the cell has no members. Ties are
// permitted to resolve to the first occurrence (spec.md §4.1 / §8).
func electMaster(points []Point, cell Cell) string {
	if len(cell.Members) == 0 {
		return ""
	}
	byID := make(map[string]Point, len(points))
	for _, p := range points {
		byID[p.ID] = p
	}
	best := cell.Members[0]
	bestDist := sqDist(byID[best].X, byID[best].Y, cell.Centroid[0], cell.Centroid[1])
	for _, id := range cell.Members[1:] {
		p := byID[id]
		d := sqDist(p.X, p.Y, cell.Centroid[0], cell.Centroid[1])
		if d < bestDist {
			bestDist = d
			best = id
		}
	}
	return best
}
