package fluid

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFoamSpawnCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.FoamImpactSpeed = 100
	cfg.FoamPerImpact = 3
	s := New(cfg)
	s.AddParticle(400, 300)
	p := &s.store.items[0]
	p.Pos = mgl64.Vec2{400, cfg.Height} // at the floor
	p.Vel = mgl64.Vec2{0, 400}          // well above the threshold

	s.resolve()
	s.emitFoam()

	if got := s.FoamCount(); got != cfg.FoamPerImpact {
		t.Fatalf("foam after impact = %d, want exactly %d", got, cfg.FoamPerImpact)
	}
	if got := s.counters.FoamSpawned; got != cfg.FoamPerImpact {
		t.Errorf("FoamSpawned counter = %d, want %d", got, cfg.FoamPerImpact)
	}
}

func TestNoFoamBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.FoamImpactSpeed = 100
	s := New(cfg)
	s.AddParticle(400, 300)
	p := &s.store.items[0]
	p.Pos = mgl64.Vec2{400, cfg.Height}
	p.Vel = mgl64.Vec2{0, 60} // below the threshold

	s.resolve()
	s.emitFoam()

	if got := s.FoamCount(); got != 0 {
		t.Errorf("foam after slow impact = %d, want 0", got)
	}
}

func TestFoamDecaysToRemoval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.FoamImpactSpeed = 100
	cfg.FoamPerImpact = 4
	cfg.FoamLife = 0.5
	s := New(cfg)
	s.AddParticle(400, 300)
	p := &s.store.items[0]
	p.Pos = mgl64.Vec2{400, cfg.Height}
	p.Vel = mgl64.Vec2{0, 400}

	s.resolve()
	s.emitFoam()
	if s.FoamCount() != 4 {
		t.Fatalf("foam = %d, want 4", s.FoamCount())
	}

	s.decayFoam(0.3)
	if s.FoamCount() != 4 {
		t.Fatalf("foam decayed early: %d", s.FoamCount())
	}
	s.decayFoam(0.3)
	if s.FoamCount() != 0 {
		t.Fatalf("foam = %d after full decay, want 0", s.FoamCount())
	}

	// Retired slots are recycled by later spawns.
	free := len(s.store.free)
	if free != 4 {
		t.Errorf("free list has %d slots, want 4", free)
	}
	s.AddParticle(100, 100)
	if len(s.store.free) != free-1 {
		t.Errorf("new particle did not reuse a freed slot")
	}
}

func TestFoamExcludedFromDensity(t *testing.T) {
	run := func(withFoam bool) float64 {
		cfg := DefaultConfig()
		cfg.Gravity = 0
		s := New(cfg)
		s.AddParticle(400, 300)
		s.AddParticle(404, 300)
		if withFoam {
			i := s.store.alloc(KindFoam)
			s.store.items[i].Pos = mgl64.Vec2{402, 300}
			s.store.items[i].Life = 1
		}
		s.prepareTick()
		return s.store.items[0].Density
	}

	if with, without := run(true), run(false); with != without {
		t.Errorf("foam leaked into the density sum: %v vs %v", with, without)
	}
}
