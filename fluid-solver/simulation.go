// Package fluid implements a real-time 2D smoothed-particle-hydrodynamics
// simulation: a particle fluid coupled to circular rigid bodies and
// user-placed line barriers. The package is headless; the terminal and
// websocket layers consume its snapshots and feed input through its methods.
package fluid

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Counters are informational telemetry, not physics state. They survive ticks
// and reset only with the simulation.
type Counters struct {
	Dropped     int `json:"dropped"`     // particle spawns refused at the cap
	Contained   int `json:"contained"`   // non-finite states rolled back
	FoamSpawned int `json:"foamSpawned"` // foam particles ever emitted
}

// Simulation owns all mutable state of one fluid sandbox. It is strictly
// single-threaded: callers invoke input methods and Step from one goroutine,
// and input lands between ticks only. The websocket layer serializes its
// events onto the tick loop for exactly that reason.
type Simulation struct {
	cfg      Config
	defaults Config

	store    particleStore
	bodies   []RigidBody
	barriers []Barrier
	nextID   int

	grid    *spatialGrid
	kernels kernelSet

	nbuf    []int
	impacts []impact
	prePos  []mgl64.Vec2
	preVel  []mgl64.Vec2
	preDead []bool

	rng      *rand.Rand
	counters Counters
}

// New builds a simulation from cfg. Non-positive fluid constants fall back to
// their defaults and the user-facing parameters are clamped into range, so a
// hand-written Config cannot violate the solver's invariants.
func New(cfg Config) *Simulation {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.SmoothingRadius <= 0 {
		cfg.SmoothingRadius = def.SmoothingRadius
	}
	if cfg.ParticleMass <= 0 {
		cfg.ParticleMass = def.ParticleMass
	}
	if cfg.RestDensity <= 0 {
		cfg.RestDensity = def.RestDensity
	}
	if cfg.Stiffness <= 0 {
		cfg.Stiffness = def.Stiffness
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = def.MaxStep
	}
	if cfg.SubStep <= 0 || cfg.SubStep > cfg.MaxStep {
		cfg.SubStep = def.SubStep
	}
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = def.MaxParticles
	}
	if cfg.ParticleRadius <= 0 {
		cfg.ParticleRadius = def.ParticleRadius
	}
	if cfg.Damping <= 0 || cfg.Damping > 1 {
		cfg.Damping = def.Damping
	}
	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = def.MaxSpeed
	}
	if cfg.WallRestitution <= 0 || cfg.WallRestitution >= 1 {
		cfg.WallRestitution = def.WallRestitution
	}
	if cfg.FoamImpactSpeed <= 0 {
		cfg.FoamImpactSpeed = def.FoamImpactSpeed
	}
	if cfg.FoamPerImpact <= 0 {
		cfg.FoamPerImpact = def.FoamPerImpact
	}
	if cfg.FoamLife <= 0 {
		cfg.FoamLife = def.FoamLife
	}
	if cfg.SurfaceNeighbors < 0 {
		cfg.SurfaceNeighbors = def.SurfaceNeighbors
	}
	cfg.Gravity = clamp(cfg.Gravity, MinGravity, MaxGravity)
	cfg.Viscosity = clamp(cfg.Viscosity, MinViscosity, MaxViscosity)
	cfg.SurfaceTension = clamp(cfg.SurfaceTension, MinSurfaceTension, MaxSurfaceTension)

	return &Simulation{
		cfg:      cfg,
		defaults: cfg,
		grid:     newSpatialGrid(cfg.SmoothingRadius),
		kernels:  newKernelSet(cfg.SmoothingRadius),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the current parameter set.
func (s *Simulation) Config() Config {
	return s.cfg
}

// AddParticle appends one fluid particle at rest. Particles beyond the
// configured cap are silently dropped; the refusal is visible only through
// the Dropped counter.
func (s *Simulation) AddParticle(x, y float64) {
	if s.store.fluid+s.store.foam >= s.cfg.MaxParticles {
		s.counters.Dropped++
		return
	}
	i := s.store.alloc(KindFluid)
	p := &s.store.items[i]
	p.Pos = mgl64.Vec2{clamp(x, 0, s.cfg.Width), clamp(y, 0, s.cfg.Height)}
	p.Density = s.cfg.RestDensity
}

// AddBarrier places an immovable segment and returns its id. Zero-length
// segments are degenerate geometry and are rejected.
func (s *Simulation) AddBarrier(x1, y1, x2, y2 float64) (int, error) {
	a := mgl64.Vec2{x1, y1}
	b := mgl64.Vec2{x2, y2}
	if b.Sub(a).Len() < distEps {
		return 0, fmt.Errorf("fluid: zero-length barrier at (%v,%v)", x1, y1)
	}
	s.nextID++
	s.barriers = append(s.barriers, Barrier{ID: s.nextID, A: a, B: b})
	return s.nextID, nil
}

// RemoveBarrier deletes the barrier with the given id, reporting whether it
// existed.
func (s *Simulation) RemoveBarrier(id int) bool {
	for i, b := range s.barriers {
		if b.ID == id {
			s.barriers = append(s.barriers[:i], s.barriers[i+1:]...)
			return true
		}
	}
	return false
}

// DropObject spawns a rigid body of the given shape near the top of the
// domain at a random horizontal position.
func (s *Simulation) DropObject(shape Shape) {
	r := shape.spec().radius
	x := r + s.rng.Float64()*(s.cfg.Width-2*r)
	s.DropObjectAt(shape, x, r+2)
}

// DropObjectAt spawns a rigid body of the given shape at a point, clamped
// into the domain.
func (s *Simulation) DropObjectAt(shape Shape, x, y float64) {
	r := shape.spec().radius
	pos := mgl64.Vec2{clamp(x, r, s.cfg.Width-r), clamp(y, r, s.cfg.Height-r)}
	s.bodies = append(s.bodies, newRigidBody(shape, pos))
}

// Reset discards every particle, body and barrier and restores the
// construction-time parameters. Callers must not have a tick in flight.
func (s *Simulation) Reset() {
	s.store.reset()
	s.bodies = s.bodies[:0]
	s.barriers = s.barriers[:0]
	s.impacts = s.impacts[:0]
	s.cfg = s.defaults
	s.counters = Counters{}
}

// Step advances the simulation by dt seconds, running the fixed pipeline:
// grid rebuild, density and pressure, forces, integration, collision
// resolution, foam. dt is clamped to cfg.MaxStep and split into fixed
// substeps for stability; an external driver may call Step at whatever rate
// it likes. No error ever escapes a tick: a particle that turns non-finite
// is rolled back to its pre-tick state and counted.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 {
		return
	}
	if dt > s.cfg.MaxStep {
		dt = s.cfg.MaxStep
	}
	s.capturePreTick()

	for remaining := dt; remaining > 1e-9; {
		sub := s.cfg.SubStep
		if sub > remaining {
			sub = remaining
		}
		remaining -= sub

		s.grid.rebuild(s.store.items, s.cfg.SmoothingRadius)
		s.computeDensityPressure()
		s.computeForces()
		s.integrate(sub)
		s.resolve()
		s.emitFoam()
		s.decayFoam(sub)
	}

	s.containNonFinite()
}

// capturePreTick snapshots position and velocity of every slot so a particle
// that goes non-finite during the tick can be restored.
func (s *Simulation) capturePreTick() {
	n := len(s.store.items)
	if cap(s.prePos) < n {
		s.prePos = make([]mgl64.Vec2, n)
		s.preVel = make([]mgl64.Vec2, n)
		s.preDead = make([]bool, n)
	}
	s.prePos = s.prePos[:n]
	s.preVel = s.preVel[:n]
	s.preDead = s.preDead[:n]
	for i := range s.store.items {
		s.prePos[i] = s.store.items[i].Pos
		s.preVel[i] = s.store.items[i].Vel
		s.preDead[i] = s.store.items[i].dead
	}
}

// containNonFinite locally repairs numeric blowups: an affected particle is
// reset to its pre-tick state (or retired, if it was born this tick) and the
// simulation carries on.
func (s *Simulation) containNonFinite() {
	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead {
			continue
		}
		if finiteVec(p.Pos) && finiteVec(p.Vel) && !math.IsNaN(p.Density) && !math.IsInf(p.Density, 0) {
			continue
		}
		s.counters.Contained++
		if i < len(s.prePos) && !s.preDead[i] && finiteVec(s.prePos[i]) && finiteVec(s.preVel[i]) {
			p.Pos = s.prePos[i]
			p.Vel = s.preVel[i]
			p.Density = s.cfg.RestDensity
			p.Pressure = 0
		} else {
			// Born this tick or corrupted before it; nothing sane to restore.
			s.store.release(i)
		}
	}
}
