package fluid

import "math"

// integrate advances every live particle and rigid body by dt using
// semi-implicit Euler: velocity from the accumulated force first, then
// position from the updated velocity. The damping factor bleeds off the
// energy numerical integration injects, and the speed clamp keeps one
// misbehaving particle from tunneling across the domain in a single step.
// dt is assumed bounded and non-negative; Step enforces that before calling.
func (s *Simulation) integrate(dt float64) {
	cfg := &s.cfg
	invMass := 1.0 / cfg.ParticleMass
	maxSpeed2 := cfg.MaxSpeed * cfg.MaxSpeed
	gravity := cfg.gravityAccel()

	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead {
			continue
		}
		if p.Kind == KindFoam {
			// Foam is inert: gravity only, no damping, no SPH forces.
			p.Vel[1] += gravity * dt
			p.Pos = p.Pos.Add(p.Vel.Mul(dt))
			continue
		}

		p.Vel = p.Vel.Add(p.Force.Mul(dt * invMass))
		p.Vel = p.Vel.Mul(cfg.Damping)
		if v2 := p.Vel.Dot(p.Vel); v2 > maxSpeed2 {
			p.Vel = p.Vel.Mul(cfg.MaxSpeed / math.Sqrt(v2))
		}
		p.Pos = p.Pos.Add(p.Vel.Mul(dt))
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		b.Vel[1] += gravity * dt
		b.Pos = b.Pos.Add(b.Vel.Mul(dt))
	}
}
