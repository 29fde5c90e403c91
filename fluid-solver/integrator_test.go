package fluid

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFreeFallVelocity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 1.0
	cfg.Damping = 1.0
	s := New(cfg)
	s.AddParticle(400, 50)

	const n = 20
	dt := cfg.SubStep
	for i := 0; i < n; i++ {
		s.Step(dt)
	}

	// A lone particle has no SPH forces: after n steps of pure free fall
	// its velocity is g*dt*n.
	want := cfg.gravityAccel() * dt * float64(n)
	got := s.store.items[0].Vel[1]
	if math.Abs(got-want) > 1e-6*want {
		t.Errorf("free-fall vy after %d steps = %v, want about %v", n, got, want)
	}
	if vx := s.store.items[0].Vel[0]; vx != 0 {
		t.Errorf("free-fall vx = %v, want 0", vx)
	}
}

func TestDampingBleedsVelocity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.Damping = 0.9
	s := New(cfg)
	s.AddParticle(400, 300)
	s.store.items[0].Vel = mgl64.Vec2{100, 0}

	s.Step(cfg.SubStep)

	want := 100 * cfg.Damping
	if got := s.store.items[0].Vel[0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("damped vx = %v, want %v", got, want)
	}
}

func TestSpeedClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.Damping = 1.0
	cfg.MaxSpeed = 50
	s := New(cfg)
	s.AddParticle(400, 300)
	s.store.items[0].Vel = mgl64.Vec2{4000, 3000}

	s.integrate(cfg.SubStep)

	if speed := s.store.items[0].Vel.Len(); speed > cfg.MaxSpeed*(1+1e-12) {
		t.Errorf("speed after clamp = %v, want <= %v", speed, cfg.MaxSpeed)
	}
}

func TestSemiImplicitOrder(t *testing.T) {
	// Velocity updates before position: after one step from rest the
	// particle has already moved by the newly gained velocity, not zero.
	cfg := DefaultConfig()
	cfg.Gravity = 1.0
	cfg.Damping = 1.0
	s := New(cfg)
	s.AddParticle(400, 50)

	dt := cfg.SubStep
	s.Step(dt)

	moved := s.store.items[0].Pos[1] - 50
	want := cfg.gravityAccel() * dt * dt
	if math.Abs(moved-want) > 1e-9*want {
		t.Errorf("first-step displacement = %v, want g*dt*dt = %v (explicit Euler would give 0)", moved, want)
	}
}
