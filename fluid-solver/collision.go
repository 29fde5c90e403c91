package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// impact records one qualifying particle collision of the current tick. The
// foam emitter consumes these after the resolver pass.
type impact struct {
	pos   mgl64.Vec2
	vel   mgl64.Vec2 // velocity after reflection
	speed float64    // approach speed along the contact normal
}

// resolve pushes every particle and rigid body back into a legal state. All
// checks are discrete and position-based: a penetrating entity is projected
// out along the contact normal and the normal velocity component is reflected
// with restitution. Tunneling at extreme speed is an accepted limitation,
// mitigated by the dt clamp in Step.
func (s *Simulation) resolve() {
	s.impacts = s.impacts[:0]

	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead {
			continue
		}
		if p.Kind == KindFoam {
			s.containFoam(p)
			continue
		}
		s.collideParticleBounds(p)
		for _, barrier := range s.barriers {
			s.collideParticleBarrier(p, barrier)
		}
		for j := range s.bodies {
			s.collideParticleBody(p, &s.bodies[j])
		}
	}

	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			collideBodies(&s.bodies[i], &s.bodies[j])
		}
		s.collideBodyBounds(&s.bodies[i])
		for _, barrier := range s.barriers {
			s.collideBodyBarrier(&s.bodies[i], barrier)
		}
	}
}

// recordImpact queues a foam spawn if the approach speed qualifies.
func (s *Simulation) recordImpact(pos, vel mgl64.Vec2, speed float64) {
	if speed < s.cfg.FoamImpactSpeed {
		return
	}
	s.impacts = append(s.impacts, impact{pos: pos, vel: vel, speed: speed})
}

func (s *Simulation) collideParticleBounds(p *Particle) {
	cfg := &s.cfg
	r := cfg.ParticleRadius
	rest := cfg.WallRestitution

	if p.Pos[0] < r {
		p.Pos[0] = r
		if p.Vel[0] < 0 {
			s.recordImpact(p.Pos, mgl64.Vec2{-p.Vel[0] * rest, p.Vel[1]}, -p.Vel[0])
			p.Vel[0] = -p.Vel[0] * rest
		}
	}
	if p.Pos[0] > cfg.Width-r {
		p.Pos[0] = cfg.Width - r
		if p.Vel[0] > 0 {
			s.recordImpact(p.Pos, mgl64.Vec2{-p.Vel[0] * rest, p.Vel[1]}, p.Vel[0])
			p.Vel[0] = -p.Vel[0] * rest
		}
	}
	if p.Pos[1] < r {
		p.Pos[1] = r
		if p.Vel[1] < 0 {
			s.recordImpact(p.Pos, mgl64.Vec2{p.Vel[0], -p.Vel[1] * rest}, -p.Vel[1])
			p.Vel[1] = -p.Vel[1] * rest
		}
	}
	if p.Pos[1] > cfg.Height-r {
		p.Pos[1] = cfg.Height - r
		if p.Vel[1] > 0 {
			s.recordImpact(p.Pos, mgl64.Vec2{p.Vel[0], -p.Vel[1] * rest}, p.Vel[1])
			p.Vel[1] = -p.Vel[1] * rest
		}
	}
}

// containFoam keeps foam inside the domain without spawning further foam.
func (s *Simulation) containFoam(p *Particle) {
	cfg := &s.cfg
	p.Pos[0] = clamp(p.Pos[0], 0, cfg.Width)
	if p.Pos[1] > cfg.Height {
		p.Pos[1] = cfg.Height
		p.Vel[1] = 0
	}
}

func (s *Simulation) collideParticleBarrier(p *Particle, barrier Barrier) {
	r := s.cfg.ParticleRadius
	closest := barrier.closestPoint(p.Pos)
	d := p.Pos.Sub(closest)
	dist := d.Len()
	if dist >= r {
		return
	}

	var n mgl64.Vec2
	if dist > distEps {
		n = d.Mul(1 / dist)
	} else {
		// Particle sits on the segment; push out perpendicular to it.
		ab := barrier.B.Sub(barrier.A)
		n = mgl64.Vec2{-ab[1], ab[0]}.Normalize()
		if n.Dot(p.Vel) > 0 {
			n = n.Mul(-1)
		}
	}

	p.Pos = closest.Add(n.Mul(r))
	vn := p.Vel.Dot(n)
	if vn < 0 {
		p.Vel = p.Vel.Sub(n.Mul((1 + s.cfg.WallRestitution) * vn))
		s.recordImpact(p.Pos, p.Vel, -vn)
	}
}

// collideParticleBody exchanges impulse between a particle and a body in
// proportion to their mass ratio. The body is normally far heavier, so the
// dominant effect is deflecting the particle; the body still accumulates the
// equal and opposite impulse so a stream of fluid can push it.
func (s *Simulation) collideParticleBody(p *Particle, b *RigidBody) {
	minDist := b.Radius + s.cfg.ParticleRadius
	d := p.Pos.Sub(b.Pos)
	dist := d.Len()
	if dist >= minDist {
		return
	}
	if dist < distEps {
		d = mgl64.Vec2{0, -1}
		dist = distEps
	}
	n := d.Mul(1 / dist)
	p.Pos = b.Pos.Add(n.Mul(minDist))

	vrel := p.Vel.Sub(b.Vel)
	vn := vrel.Dot(n)
	if vn >= 0 {
		return
	}
	mp := s.cfg.ParticleMass
	imp := -(1 + b.Restitution) * vn / (1/mp + 1/b.Mass)
	p.Vel = p.Vel.Add(n.Mul(imp / mp))
	b.Vel = b.Vel.Sub(n.Mul(imp / b.Mass))
	s.recordImpact(p.Pos, p.Vel, -vn)
}

// collideBodies resolves a body pair with an impulse along the contact
// normal. The combined restitution is the product of both coefficients.
func collideBodies(a, b *RigidBody) {
	minDist := a.Radius + b.Radius
	d := b.Pos.Sub(a.Pos)
	dist := d.Len()
	if dist >= minDist || dist < distEps {
		return
	}
	n := d.Mul(1 / dist)

	// Separate the pair in proportion to inverse mass.
	overlap := minDist - dist
	total := 1/a.Mass + 1/b.Mass
	a.Pos = a.Pos.Sub(n.Mul(overlap * (1 / a.Mass) / total))
	b.Pos = b.Pos.Add(n.Mul(overlap * (1 / b.Mass) / total))

	vrel := b.Vel.Sub(a.Vel)
	vn := vrel.Dot(n)
	if vn >= 0 {
		return
	}
	e := a.Restitution * b.Restitution
	imp := -(1 + e) * vn / total
	a.Vel = a.Vel.Sub(n.Mul(imp / a.Mass))
	b.Vel = b.Vel.Add(n.Mul(imp / b.Mass))
}

// collideBodyBounds reflects a body off the domain walls. The wall carries
// WallRestitution, so the effective coefficient is the product, the same
// combination rule as for body pairs.
func (s *Simulation) collideBodyBounds(b *RigidBody) {
	cfg := &s.cfg
	e := b.Restitution * cfg.WallRestitution
	if b.Pos[0] < b.Radius {
		b.Pos[0] = b.Radius
		if b.Vel[0] < 0 {
			b.Vel[0] = -b.Vel[0] * e
		}
	}
	if b.Pos[0] > cfg.Width-b.Radius {
		b.Pos[0] = cfg.Width - b.Radius
		if b.Vel[0] > 0 {
			b.Vel[0] = -b.Vel[0] * e
		}
	}
	if b.Pos[1] < b.Radius {
		b.Pos[1] = b.Radius
		if b.Vel[1] < 0 {
			b.Vel[1] = -b.Vel[1] * e
		}
	}
	if b.Pos[1] > cfg.Height-b.Radius {
		b.Pos[1] = cfg.Height - b.Radius
		if b.Vel[1] > 0 {
			b.Vel[1] = -b.Vel[1] * e
		}
	}
}

// collideBodyBarrier treats the barrier like a wall: combined restitution is
// the product of the body and wall coefficients.
func (s *Simulation) collideBodyBarrier(b *RigidBody, barrier Barrier) {
	closest := barrier.closestPoint(b.Pos)
	d := b.Pos.Sub(closest)
	dist := d.Len()
	if dist >= b.Radius || dist < distEps {
		return
	}
	n := d.Mul(1 / dist)
	b.Pos = closest.Add(n.Mul(b.Radius))
	vn := b.Vel.Dot(n)
	if vn < 0 {
		e := b.Restitution * s.cfg.WallRestitution
		b.Vel = b.Vel.Sub(n.Mul((1 + e) * vn))
	}
}

// finiteVec reports whether both components are finite.
func finiteVec(v mgl64.Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) &&
		!math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}
