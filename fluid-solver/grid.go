package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// spatialGrid is a uniform hash grid over particle positions. It is rebuilt
// from scratch every tick; cell slices are retained across rebuilds so steady
// state allocates nothing. With cellSize >= query radius, every neighbor of a
// particle lies in the 3x3 block of cells around it, so queries can never
// miss a true neighbor; far candidates inside the block are filtered by exact
// distance.
type spatialGrid struct {
	cellSize float64
	cells    map[[2]int][]int
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[[2]int][]int),
	}
}

func (g *spatialGrid) cellOf(pos mgl64.Vec2) [2]int {
	return [2]int{
		int(math.Floor(pos[0] / g.cellSize)),
		int(math.Floor(pos[1] / g.cellSize)),
	}
}

// rebuild clears the grid and reassigns every live fluid particle in O(n).
// Foam and retired slots are skipped entirely.
func (g *spatialGrid) rebuild(particles []Particle, cellSize float64) {
	g.cellSize = cellSize
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := range particles {
		p := &particles[i]
		if p.dead || p.Kind != KindFluid {
			continue
		}
		key := g.cellOf(p.Pos)
		g.cells[key] = append(g.cells[key], i)
	}
}

// neighborsWithin appends to buf the indices of all particles within radius
// of particle i, by exact Euclidean distance, and returns the extended slice.
// The queried particle itself is included (its distance is zero), so a radius
// of zero yields the particle alone plus any exactly co-located ones. Callers
// summing over pairs skip the self index.
func (g *spatialGrid) neighborsWithin(particles []Particle, i int, radius float64, buf []int) []int {
	center := particles[i].Pos
	key := g.cellOf(center)
	r2 := radius * radius
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cell := g.cells[[2]int{key[0] + dx, key[1] + dy}]
			for _, j := range cell {
				d := particles[j].Pos.Sub(center)
				if d.Dot(d) <= r2 {
					buf = append(buf, j)
				}
			}
		}
	}
	return buf
}
