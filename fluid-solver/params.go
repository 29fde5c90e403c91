package fluid

import "fmt"

// Parameter clamp ranges exposed to the UI layers. Values outside a range are
// clamped, never rejected, so a slider or websocket event can always be applied.
const (
	MinGravity        = -2.0
	MaxGravity        = 3.0
	MinViscosity      = 0.1
	MaxViscosity      = 2.0
	MinSurfaceTension = 0.0
	MaxSurfaceTension = 2.0
)

// Internal scale factors mapping the UI parameter ranges onto the solver's
// working units (pixels, seconds, mass units).
const (
	gravityScale   = 1200.0
	viscosityScale = 200.0
	tensionScale   = 24.0
)

// Config holds every tunable of the simulation. A Config is read-only for the
// duration of a tick; the UI mutates it between ticks through SetParameter.
type Config struct {
	// Domain size in world units. Particles and bodies are contained in
	// [0,Width] x [0,Height], y growing downward.
	Width  float64
	Height float64

	// User-facing parameters, kept in their documented UI ranges.
	Gravity        float64
	Viscosity      float64
	SurfaceTension float64

	// Fluid constants.
	Stiffness       float64 // gas constant k of the equation of state
	RestDensity     float64
	SmoothingRadius float64
	ParticleMass    float64
	ParticleRadius  float64

	// Integration.
	Damping  float64 // velocity retained per substep, <= 1
	MaxStep  float64 // wall-clock dt is clamped to this before stepping
	SubStep  float64 // internal fixed substep size
	MaxSpeed float64

	// Collision and foam.
	WallRestitution  float64
	FoamImpactSpeed  float64 // relative impact speed that spawns foam
	FoamPerImpact    int
	FoamLife         float64 // seconds until a foam particle is retired
	SurfaceNeighbors int     // neighbor count below which tension applies

	MaxParticles int
}

// DefaultConfig returns the tuning the sandbox ships with: a 800x600 domain
// and fluid constants sized for a smoothing radius of 16 world units.
func DefaultConfig() Config {
	return Config{
		Width:  800,
		Height: 600,

		Gravity:        1.0,
		Viscosity:      1.0,
		SurfaceTension: 0.5,

		Stiffness:       50.0,
		RestDensity:     1000.0,
		SmoothingRadius: 16.0,
		ParticleMass:    200.0,
		ParticleRadius:  4.0,

		Damping:  0.998,
		MaxStep:  1.0 / 30.0,
		SubStep:  1.0 / 400.0,
		MaxSpeed: 900.0,

		WallRestitution:  0.5,
		FoamImpactSpeed:  260.0,
		FoamPerImpact:    4,
		FoamLife:         0.8,
		SurfaceNeighbors: 12,

		MaxParticles: 3000,
	}
}

// gravityAccel is the vertical acceleration in world units per second squared.
func (c *Config) gravityAccel() float64 {
	return c.Gravity * gravityScale
}

// viscosityMu is the viscosity coefficient in solver units.
func (c *Config) viscosityMu() float64 {
	return c.Viscosity * viscosityScale
}

// tensionSigma is the surface tension coefficient in solver units.
func (c *Config) tensionSigma() float64 {
	return c.SurfaceTension * tensionScale
}

// SetParameter updates one of the user-facing parameters by name, clamping the
// value into its documented range. Unknown names are an error; out-of-range
// values are not.
func (s *Simulation) SetParameter(name string, value float64) error {
	switch name {
	case "gravity":
		s.cfg.Gravity = clamp(value, MinGravity, MaxGravity)
	case "viscosity":
		s.cfg.Viscosity = clamp(value, MinViscosity, MaxViscosity)
	case "surfaceTension":
		s.cfg.SurfaceTension = clamp(value, MinSurfaceTension, MaxSurfaceTension)
	default:
		return fmt.Errorf("fluid: unknown parameter %q", name)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
