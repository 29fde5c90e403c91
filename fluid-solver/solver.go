package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// distEps floors every pairwise distance before kernels are evaluated so a
// near-coincident pair cannot blow up the pressure gradient.
const distEps = 1e-6

// computeDensityPressure recomputes density and pressure for every live fluid
// particle. Density sums the Poly6 kernel over all neighbors within the
// smoothing radius, including the particle's own r=0 term, so it is always
// positive. Pressure follows the linear equation of state k*(rho-rho0),
// clamped to zero: under-dense regions exert no attractive pressure (the
// clamped policy, not negative-pressure modeling).
func (s *Simulation) computeDensityPressure() {
	h := s.cfg.SmoothingRadius
	mass := s.cfg.ParticleMass
	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead || p.Kind != KindFluid {
			continue
		}
		s.nbuf = s.grid.neighborsWithin(s.store.items, i, h, s.nbuf[:0])

		density := 0.0
		for _, j := range s.nbuf {
			if j == i {
				// Self term, r=0 exactly.
				density += mass * s.kernels.Poly6(0)
				continue
			}
			r := s.store.items[j].Pos.Sub(p.Pos).Len()
			density += mass * s.kernels.Poly6(math.Max(r, distEps))
		}

		p.Density = density
		p.neighbors = len(s.nbuf) - 1
		p.Pressure = math.Max(0, s.cfg.Stiffness*(density-s.cfg.RestDensity))
	}
}

// computeForces resets every force accumulator, applies gravity, then sums
// the pairwise pressure, viscosity and surface tension contributions. Each
// unordered pair is visited once and both members receive exactly opposite
// forces, so the internal forces conserve momentum to rounding.
func (s *Simulation) computeForces() {
	cfg := &s.cfg
	h := cfg.SmoothingRadius
	mass := cfg.ParticleMass
	mu := cfg.viscosityMu()
	sigma := cfg.tensionSigma()
	gravity := cfg.gravityAccel() * mass

	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead || p.Kind != KindFluid {
			continue
		}
		p.Force = mgl64.Vec2{0, gravity}
	}

	for i := range s.store.items {
		pi := &s.store.items[i]
		if pi.dead || pi.Kind != KindFluid {
			continue
		}
		surface := pi.neighbors < cfg.SurfaceNeighbors

		s.nbuf = s.grid.neighborsWithin(s.store.items, i, h, s.nbuf[:0])
		for _, j := range s.nbuf {
			pj := &s.store.items[j]

			// Surface tension: a sparsely surrounded particle is pulled
			// toward the kernel-weighted centroid of its neighborhood.
			// Interior particles see a symmetric neighborhood and no pull;
			// the reaction on j keeps the pair momentum-free.
			if surface && j != i && sigma > 0 {
				d := pj.Pos.Sub(pi.Pos)
				r := math.Max(d.Len(), distEps)
				f := d.Mul(sigma * mass * s.kernels.Poly6(r))
				pi.Force = pi.Force.Add(f)
				pj.Force = pj.Force.Sub(f)
			}

			// Pressure and viscosity act once per unordered pair.
			if j <= i {
				continue
			}
			rij := pi.Pos.Sub(pj.Pos)
			r := math.Max(rij.Len(), distEps)

			pressTerm := -mass * (pi.Pressure + pj.Pressure) / (2 * pj.Density)
			fp := s.kernels.SpikyGrad(rij, r).Mul(pressTerm)

			dv := pj.Vel.Sub(pi.Vel)
			fv := dv.Mul(mu * mass * s.kernels.ViscLap(r) / pj.Density)

			f := fp.Add(fv)
			pi.Force = pi.Force.Add(f)
			pj.Force = pj.Force.Sub(f)
		}
	}
}
