package fluid

// ParticleState is one fluid particle as the rendering layers see it.
// Velocity is included for speed-based coloring, density for shading.
type ParticleState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Density float64 `json:"density"`
}

// FoamState is one transient foam particle; Life runs down to zero.
type FoamState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Life float64 `json:"life"`
}

// BodyState is one rigid body as the rendering layers see it.
type BodyState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Shape  string  `json:"shape"`
}

// Snapshot is a detached, read-only copy of the renderable state of one tick.
// Mutating it never touches the simulation.
type Snapshot struct {
	Particles []ParticleState `json:"particles"`
	Foam      []FoamState     `json:"foam"`
	Bodies    []BodyState     `json:"bodies"`
	Barriers  []Barrier       `json:"barriers"`

	Gravity        float64 `json:"gravity"`
	Viscosity      float64 `json:"viscosity"`
	SurfaceTension float64 `json:"surfaceTension"`

	KineticEnergy float64  `json:"kineticEnergy"`
	Counters      Counters `json:"counters"`
}

// Snapshot copies the current particle, foam, body and barrier state for the
// rendering layers. It allocates fresh slices each call so the caller may
// hold the result across ticks.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Particles: make([]ParticleState, 0, s.store.fluid),
		Foam:      make([]FoamState, 0, s.store.foam),
		Bodies:    make([]BodyState, 0, len(s.bodies)),
		Barriers:  append([]Barrier(nil), s.barriers...),

		Gravity:        s.cfg.Gravity,
		Viscosity:      s.cfg.Viscosity,
		SurfaceTension: s.cfg.SurfaceTension,
		Counters:       s.counters,
	}

	halfMass := 0.5 * s.cfg.ParticleMass
	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead {
			continue
		}
		if p.Kind == KindFoam {
			snap.Foam = append(snap.Foam, FoamState{X: p.Pos[0], Y: p.Pos[1], Life: p.Life})
			continue
		}
		snap.Particles = append(snap.Particles, ParticleState{
			X: p.Pos[0], Y: p.Pos[1],
			VX: p.Vel[0], VY: p.Vel[1],
			Density: p.Density,
		})
		snap.KineticEnergy += halfMass * p.Vel.Dot(p.Vel)
	}

	for _, b := range s.bodies {
		snap.Bodies = append(snap.Bodies, BodyState{
			X: b.Pos[0], Y: b.Pos[1],
			VX: b.Vel[0], VY: b.Vel[1],
			Radius: b.Radius,
			Shape:  b.Shape.String(),
		})
	}
	return snap
}

// FluidCount returns the number of live fluid particles.
func (s *Simulation) FluidCount() int { return s.store.fluid }

// FoamCount returns the number of live foam particles.
func (s *Simulation) FoamCount() int { return s.store.foam }
