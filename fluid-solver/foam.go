package fluid

// foamVelocityScale shrinks the reflected impact velocity before it is handed
// to the spawned foam, so spray lags the splash that produced it.
const foamVelocityScale = 0.35

// emitFoam turns this tick's qualifying impacts into bursts of foam. Each
// impact spawns exactly cfg.FoamPerImpact particles at the contact point with
// the scaled-down reflected velocity, a small directional jitter and a decay
// timer. Foam competes with fluid for the particle cap; impacts beyond the
// cap are dropped like any other over-cap spawn.
func (s *Simulation) emitFoam() {
	cfg := &s.cfg
	for _, imp := range s.impacts {
		for n := 0; n < cfg.FoamPerImpact; n++ {
			if s.store.fluid+s.store.foam >= cfg.MaxParticles {
				s.counters.Dropped++
				continue
			}
			i := s.store.alloc(KindFoam)
			p := &s.store.items[i]
			p.Pos = imp.pos
			p.Vel = imp.vel.Mul(foamVelocityScale)
			p.Vel[0] += (s.rng.Float64() - 0.5) * 40
			p.Vel[1] += (s.rng.Float64() - 0.5) * 40
			p.Life = cfg.FoamLife
			s.counters.FoamSpawned++
		}
	}
	s.impacts = s.impacts[:0]
}

// decayFoam counts every foam timer down and retires the expired ones.
func (s *Simulation) decayFoam(dt float64) {
	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead || p.Kind != KindFoam {
			continue
		}
		p.Life -= dt
		if p.Life <= 0 {
			s.store.release(i)
		}
	}
}
