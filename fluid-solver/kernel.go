package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// kernelSet bundles the three smoothing kernels of the solver with their
// coefficients folded for a fixed support radius h: Poly6 for density, the
// Spiky gradient for pressure and the viscosity Laplacian for viscosity.
// Every kernel is exactly zero at and beyond r = h, so forces cannot spike
// across the support boundary.
type kernelSet struct {
	h  float64
	h2 float64

	poly6Coeff float64 // 315 / (64 pi h^9)
	spikyCoeff float64 // -45 / (pi h^6)
	viscCoeff  float64 // 45 / (pi h^6)
}

func newKernelSet(h float64) kernelSet {
	h2 := h * h
	h3 := h2 * h
	h6 := h3 * h3
	h9 := h6 * h3
	return kernelSet{
		h:          h,
		h2:         h2,
		poly6Coeff: 315.0 / (64.0 * math.Pi * h9),
		spikyCoeff: -45.0 / (math.Pi * h6),
		viscCoeff:  45.0 / (math.Pi * h6),
	}
}

// Poly6 is the density weighting kernel, smooth and positive on [0,h).
func (k kernelSet) Poly6(r float64) float64 {
	if r >= k.h {
		return 0
	}
	d := k.h2 - r*r
	return k.poly6Coeff * d * d * d
}

// SpikyGrad returns the gradient of the Spiky kernel evaluated along rij,
// the offset from particle j to particle i. The gradient points from i
// toward j, which makes the symmetric pressure term
// -m (pi+pj)/(2 rho_j) * SpikyGrad repulsive for positive pressures.
func (k kernelSet) SpikyGrad(rij mgl64.Vec2, r float64) mgl64.Vec2 {
	if r >= k.h || r <= 0 {
		return mgl64.Vec2{}
	}
	d := k.h - r
	return rij.Mul(k.spikyCoeff * d * d / r)
}

// ViscLap is the Laplacian of the viscosity kernel, linear in (h-r) so the
// resulting force always damps relative velocity.
func (k kernelSet) ViscLap(r float64) float64 {
	if r >= k.h {
		return 0
	}
	return k.viscCoeff * (k.h - r)
}
