package fluid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoundaryContainment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 3.0
	s := New(cfg)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		s.AddParticle(rng.Float64()*cfg.Width, rng.Float64()*cfg.Height)
	}

	for i := 0; i < 30; i++ {
		s.Step(1.0 / 60)
	}

	const eps = 1e-9
	for i := range s.store.items {
		p := &s.store.items[i]
		if p.dead || p.Kind != KindFluid {
			continue
		}
		if p.Pos[0] < -eps || p.Pos[0] > cfg.Width+eps ||
			p.Pos[1] < -eps || p.Pos[1] > cfg.Height+eps {
			t.Fatalf("particle %d escaped the domain: %v", i, p.Pos)
		}
	}
}

func TestWallReflection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	s := New(cfg)
	s.AddParticle(400, 300)
	p := &s.store.items[0]
	p.Pos = mgl64.Vec2{400, cfg.Height + 5} // pushed past the floor
	p.Vel = mgl64.Vec2{0, 120}

	s.resolve()

	if want := cfg.Height - cfg.ParticleRadius; p.Pos[1] != want {
		t.Errorf("clamped y = %v, want %v", p.Pos[1], want)
	}
	if want := -120 * cfg.WallRestitution; p.Vel[1] != want {
		t.Errorf("reflected vy = %v, want %v", p.Vel[1], want)
	}
}

func TestBarrierPushout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	s := New(cfg)
	if _, err := s.AddBarrier(300, 300, 500, 300); err != nil {
		t.Fatal(err)
	}
	s.AddParticle(400, 300)
	p := &s.store.items[0]
	p.Pos = mgl64.Vec2{400, 299} // just above the segment, inside the radius
	p.Vel = mgl64.Vec2{0, 80}    // moving into it

	s.resolve()

	d := p.Pos.Sub(mgl64.Vec2{400, 300}).Len()
	if d < cfg.ParticleRadius-1e-9 {
		t.Errorf("particle still inside barrier radius: dist %v", d)
	}
	if p.Vel[1] >= 0 {
		t.Errorf("vy = %v, want reflected away from the barrier", p.Vel[1])
	}
}

func TestMassRatioImpulse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	s := New(cfg)
	s.DropObjectAt(ShapeHeavyBall, 400, 300)
	body := &s.bodies[0]

	s.AddParticle(400, 300)
	p := &s.store.items[0]
	p.Pos = mgl64.Vec2{400 - body.Radius, 300} // overlapping from the left
	p.Vel = mgl64.Vec2{300, 0}

	s.resolve()

	dvParticle := math.Abs(p.Vel[0] - 300)
	dvBody := math.Abs(body.Vel[0])
	if dvBody >= dvParticle*0.05 {
		t.Errorf("body dv %v vs particle dv %v: heavy body moved too much", dvBody, dvParticle)
	}
	if dvBody == 0 {
		t.Errorf("body received no impulse at all")
	}
}

func TestBodyPairMomentum(t *testing.T) {
	a := newRigidBody(ShapeSphere, mgl64.Vec2{400, 300})
	b := newRigidBody(ShapeHeavyBall, mgl64.Vec2{400 + a.Radius, 300})
	a.Vel = mgl64.Vec2{100, 0}
	b.Vel = mgl64.Vec2{-50, 0}

	before := a.Vel.Mul(a.Mass).Add(b.Vel.Mul(b.Mass))
	collideBodies(&a, &b)
	after := a.Vel.Mul(a.Mass).Add(b.Vel.Mul(b.Mass))

	if diff := after.Sub(before).Len(); diff > 1e-6*(1+before.Len()) {
		t.Errorf("momentum changed by %v across body collision", diff)
	}
	if a.Vel[0] >= 100 {
		t.Errorf("approaching body a not slowed: vx %v", a.Vel[0])
	}
}

func TestBodySeparationAfterCollision(t *testing.T) {
	a := newRigidBody(ShapeSphere, mgl64.Vec2{400, 300})
	b := newRigidBody(ShapeSphere, mgl64.Vec2{410, 300})
	a.Vel = mgl64.Vec2{50, 0}
	b.Vel = mgl64.Vec2{-50, 0}

	collideBodies(&a, &b)

	if dist := b.Pos.Sub(a.Pos).Len(); dist < a.Radius+b.Radius-1e-9 {
		t.Errorf("bodies still overlapping after resolution: dist %v", dist)
	}
}

func TestBodyBoundaryReflection(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)
	s.DropObjectAt(ShapeLightBall, 400, 300)
	b := &s.bodies[0]
	b.Pos = mgl64.Vec2{400, cfg.Height + 3}
	b.Vel = mgl64.Vec2{0, 90}

	s.resolve()

	if want := cfg.Height - b.Radius; b.Pos[1] != want {
		t.Errorf("body y = %v, want clamped to %v", b.Pos[1], want)
	}
	if want := -90 * b.Restitution * cfg.WallRestitution; b.Vel[1] != want {
		t.Errorf("body vy = %v, want %v", b.Vel[1], want)
	}
}

func TestBodyBoundaryCombinedRestitution(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)
	s.DropObjectAt(ShapeHeavyBall, 400, 300)
	b := &s.bodies[0]
	b.Pos = mgl64.Vec2{400, cfg.Height + 3}
	b.Vel = mgl64.Vec2{0, 90}

	s.resolve()

	// The wall's coefficient combines with the body's by product, exactly as
	// for body pairs; the body coefficient alone would give -27 here.
	if want := -90 * b.Restitution * cfg.WallRestitution; b.Vel[1] != want {
		t.Errorf("body vy = %v, want %v", b.Vel[1], want)
	}
}

func TestBodyBarrierStops(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)
	if _, err := s.AddBarrier(300, 400, 500, 400); err != nil {
		t.Fatal(err)
	}
	s.DropObjectAt(ShapeSphere, 400, 300)
	b := &s.bodies[0]
	b.Pos = mgl64.Vec2{400, 395} // overlapping the segment from above
	b.Vel = mgl64.Vec2{0, 60}

	s.resolve()

	if d := b.Pos.Sub(mgl64.Vec2{400, 400}).Len(); d < b.Radius-1e-9 {
		t.Errorf("body still inside barrier: dist %v", d)
	}
	want := -60 * b.Restitution * cfg.WallRestitution
	if math.Abs(b.Vel[1]-want) > 1e-9 {
		t.Errorf("body vy = %v, want %v", b.Vel[1], want)
	}
}
