package fluid

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestKernelSupportCutoff(t *testing.T) {
	k := newKernelSet(16)
	for _, r := range []float64{16, 16.0001, 20, 1e6} {
		if got := k.Poly6(r); got != 0 {
			t.Errorf("Poly6(%v) = %v, want exactly 0", r, got)
		}
		if got := k.SpikyGrad(mgl64.Vec2{r, 0}, r); got != (mgl64.Vec2{}) {
			t.Errorf("SpikyGrad(%v) = %v, want zero vector", r, got)
		}
		if got := k.ViscLap(r); got != 0 {
			t.Errorf("ViscLap(%v) = %v, want exactly 0", r, got)
		}
	}
}

func TestPoly6PositiveAndDecreasing(t *testing.T) {
	k := newKernelSet(16)
	prev := math.Inf(1)
	for r := 0.0; r < 16; r += 0.5 {
		w := k.Poly6(r)
		if w <= 0 {
			t.Fatalf("Poly6(%v) = %v, want > 0 inside support", r, w)
		}
		if w > prev {
			t.Fatalf("Poly6 increased from %v to %v at r=%v", prev, w, r)
		}
		prev = w
	}
}

func TestSpikyGradPointsTowardNeighbor(t *testing.T) {
	k := newKernelSet(16)
	// rij = ri - rj with the neighbor to the left; the gradient must point
	// from i toward j so that the negated pressure term becomes repulsive.
	rij := mgl64.Vec2{8, 0}
	g := k.SpikyGrad(rij, 8)
	if g[0] >= 0 {
		t.Errorf("SpikyGrad x-component = %v, want < 0 (toward the neighbor)", g[0])
	}
	if g[1] != 0 {
		t.Errorf("SpikyGrad y-component = %v, want 0 for a horizontal pair", g[1])
	}
}

func TestSpikyGradMagnitudeGrowsNearContact(t *testing.T) {
	k := newKernelSet(16)
	near := k.SpikyGrad(mgl64.Vec2{1, 0}, 1).Len()
	far := k.SpikyGrad(mgl64.Vec2{12, 0}, 12).Len()
	if near <= far {
		t.Errorf("gradient magnitude near contact (%v) not above far magnitude (%v)", near, far)
	}
}

func TestViscLapLinear(t *testing.T) {
	k := newKernelSet(16)
	// The Laplacian is linear in (h-r): doubling the gap doubles the value.
	a := k.ViscLap(14) // gap 2
	b := k.ViscLap(12) // gap 4
	if math.Abs(b-2*a) > 1e-12*math.Abs(b) {
		t.Errorf("ViscLap(12) = %v, want twice ViscLap(14) = %v", b, 2*a)
	}
	if a <= 0 {
		t.Errorf("ViscLap inside support = %v, want > 0", a)
	}
}
