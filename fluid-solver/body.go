package fluid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the closed set of droppable rigid-body kinds. Shape-specific
// constants are resolved once at creation time; the per-tick physics only
// ever sees radius, mass and restitution.
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeCube
	ShapeLightBall
	ShapeHeavyBall
)

// ParseShape maps the wire/UI name of a shape onto its tag.
func ParseShape(name string) (Shape, error) {
	switch name {
	case "sphere":
		return ShapeSphere, nil
	case "cube":
		return ShapeCube, nil
	case "lightBall":
		return ShapeLightBall, nil
	case "heavyBall":
		return ShapeHeavyBall, nil
	}
	return 0, fmt.Errorf("fluid: unknown shape %q", name)
}

func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeCube:
		return "cube"
	case ShapeLightBall:
		return "lightBall"
	case ShapeHeavyBall:
		return "heavyBall"
	}
	return "unknown"
}

// shapeSpec carries the creation-time constants of one shape. The cube uses
// its half-extent as collision radius; contacts are circular for every shape.
type shapeSpec struct {
	radius      float64
	density     float64 // mass per unit area
	restitution float64
}

func (s Shape) spec() shapeSpec {
	switch s {
	case ShapeCube:
		return shapeSpec{radius: 12, density: 6.0, restitution: 0.4}
	case ShapeLightBall:
		return shapeSpec{radius: 10, density: 1.2, restitution: 0.8}
	case ShapeHeavyBall:
		return shapeSpec{radius: 16, density: 14.0, restitution: 0.3}
	default: // ShapeSphere
		return shapeSpec{radius: 14, density: 4.0, restitution: 0.6}
	}
}

// RigidBody is a circular obstacle the fluid interacts with. Bodies are
// mutated only by the integrator and the collision resolver.
type RigidBody struct {
	Pos mgl64.Vec2
	Vel mgl64.Vec2

	Radius      float64
	Mass        float64
	Restitution float64
	Shape       Shape
}

func newRigidBody(shape Shape, pos mgl64.Vec2) RigidBody {
	spec := shape.spec()
	return RigidBody{
		Pos:         pos,
		Radius:      spec.radius,
		Mass:        spec.density * math.Pi * spec.radius * spec.radius,
		Restitution: spec.restitution,
		Shape:       shape,
	}
}

// Barrier is an immovable line segment placed by the user. It is read-only to
// the physics core once created.
type Barrier struct {
	ID int        `json:"id"`
	A  mgl64.Vec2 `json:"a"`
	B  mgl64.Vec2 `json:"b"`
}

// closestPoint returns the point on the segment nearest to p.
func (b Barrier) closestPoint(p mgl64.Vec2) mgl64.Vec2 {
	ab := b.B.Sub(b.A)
	length2 := ab.Dot(ab)
	if length2 == 0 {
		return b.A
	}
	t := clamp(p.Sub(b.A).Dot(ab)/length2, 0, 1)
	return b.A.Add(ab.Mul(t))
}
