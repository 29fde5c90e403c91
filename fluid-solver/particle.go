package fluid

import "github.com/go-gl/mathgl/mgl64"

// Kind separates real fluid particles from the transient foam ones. Foam is
// visual only: it never enters the spatial grid or the SPH sums.
type Kind uint8

const (
	KindFluid Kind = iota
	KindFoam
)

// Particle is one record of the particle arena. Density, Pressure and Force
// are scratch state recomputed every tick; Life is meaningful for foam only.
type Particle struct {
	Pos   mgl64.Vec2
	Vel   mgl64.Vec2
	Force mgl64.Vec2

	Density  float64
	Pressure float64

	Kind Kind
	Life float64

	neighbors int
	dead      bool
}

// particleStore is a dense arena of particle records plus a free list of
// recyclable slots. Particles are referenced by index everywhere (grid cells,
// neighbor buffers), never by pointer identity, so retiring foam does not
// reshuffle the live fluid.
type particleStore struct {
	items []Particle
	free  []int

	fluid int
	foam  int
}

// alloc returns the index of a zeroed live record, reusing a free slot when
// one exists.
func (a *particleStore) alloc(kind Kind) int {
	var i int
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
		a.items[i] = Particle{}
	} else {
		i = len(a.items)
		a.items = append(a.items, Particle{})
	}
	a.items[i].Kind = kind
	switch kind {
	case KindFoam:
		a.foam++
	default:
		a.fluid++
	}
	return i
}

// release retires a record and queues its slot for reuse.
func (a *particleStore) release(i int) {
	if a.items[i].dead {
		return
	}
	switch a.items[i].Kind {
	case KindFoam:
		a.foam--
	default:
		a.fluid--
	}
	a.items[i].dead = true
	a.free = append(a.free, i)
}

// reset drops every record and every free slot.
func (a *particleStore) reset() {
	a.items = a.items[:0]
	a.free = a.free[:0]
	a.fluid = 0
	a.foam = 0
}
