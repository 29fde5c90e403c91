// Package terminal renders the simulation as ASCII in a termbox screen and
// translates keyboard and mouse input into simulation events.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/nsf/termbox-go"

	fluid "github.com/bcgamma1/fluidDynamicsSandbox/fluid-solver"
)

// Density shading, sparse to packed.
var shades = []rune{'·', ':', '+', '*', '#', '█'}

// Terminal runs the interactive sandbox in the current terminal. One column
// of cells maps onto a vertical slice of the simulation domain.
type Terminal struct {
	sim *fluid.Simulation

	cols, rows int
	logfile    *os.File

	barrierMode bool
	pendingX    float64
	pendingY    float64
	hasPending  bool
	barrierIDs  []int
}

// New wires a terminal UI around an existing simulation. Input events are
// appended to debug.log for troubleshooting.
func New(sim *fluid.Simulation) *Terminal {
	t := &Terminal{sim: sim}
	t.logfile, _ = os.OpenFile("debug.log", os.O_CREATE|os.O_RDWR, 0755)
	return t
}

// Run drives the simulation at a fixed frame rate until Esc or q is pressed.
// Input is drained between steps only, so the user cannot mutate state while
// a tick is in flight.
func (t *Terminal) Run() error {
	if t.logfile != nil {
		defer t.logfile.Close()
	}

	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	t.cols, t.rows = termbox.Size()

	events := make(chan termbox.Event, 16)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	const frame = time.Second / 60
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for now := range ticker.C {
	drain:
		for {
			select {
			case ev := <-events:
				if t.handle(ev) {
					return nil
				}
			default:
				break drain
			}
		}

		t.sim.Step(now.Sub(last).Seconds())
		last = now
		t.draw()
	}
	return nil
}

// handle applies one termbox event; it reports whether the UI should quit.
func (t *Terminal) handle(ev termbox.Event) bool {
	switch ev.Type {
	case termbox.EventKey:
		return t.handleKey(ev)
	case termbox.EventMouse:
		if ev.Key == termbox.MouseLeft {
			t.handleClick(ev.MouseX, ev.MouseY)
		}
	case termbox.EventResize:
		t.cols, t.rows = ev.Width, ev.Height
	}
	return false
}

func (t *Terminal) handleKey(ev termbox.Event) bool {
	sim := t.sim
	cfg := sim.Config()
	switch {
	case ev.Key == termbox.KeyEsc || ev.Ch == 'q':
		return true
	case ev.Ch == 'r':
		sim.Reset()
		t.barrierIDs = t.barrierIDs[:0]
		t.hasPending = false
	case ev.Ch == 'g':
		sim.SetParameter("gravity", cfg.Gravity-0.1)
	case ev.Ch == 'G':
		sim.SetParameter("gravity", cfg.Gravity+0.1)
	case ev.Ch == 'v':
		sim.SetParameter("viscosity", cfg.Viscosity-0.1)
	case ev.Ch == 'V':
		sim.SetParameter("viscosity", cfg.Viscosity+0.1)
	case ev.Ch == 't':
		sim.SetParameter("surfaceTension", cfg.SurfaceTension-0.1)
	case ev.Ch == 'T':
		sim.SetParameter("surfaceTension", cfg.SurfaceTension+0.1)
	case ev.Ch == 'b':
		t.barrierMode = !t.barrierMode
		t.hasPending = false
	case ev.Ch == 'd':
		// Remove the most recently placed barrier.
		if n := len(t.barrierIDs); n > 0 {
			sim.RemoveBarrier(t.barrierIDs[n-1])
			t.barrierIDs = t.barrierIDs[:n-1]
		}
	case ev.Ch == '1':
		sim.DropObject(fluid.ShapeSphere)
	case ev.Ch == '2':
		sim.DropObject(fluid.ShapeCube)
	case ev.Ch == '3':
		sim.DropObject(fluid.ShapeLightBall)
	case ev.Ch == '4':
		sim.DropObject(fluid.ShapeHeavyBall)
	}
	return false
}

// handleClick pours water at the clicked cell, or places barrier endpoints
// when barrier mode is active.
func (t *Terminal) handleClick(mx, my int) {
	x, y := t.toWorld(mx, my)
	t.log(t.logfile, mx, my)

	if t.barrierMode {
		if !t.hasPending {
			t.pendingX, t.pendingY = x, y
			t.hasPending = true
			return
		}
		if id, err := t.sim.AddBarrier(t.pendingX, t.pendingY, x, y); err == nil {
			t.barrierIDs = append(t.barrierIDs, id)
		}
		t.hasPending = false
		return
	}

	// A small splash of particles, not a single drop.
	cfg := t.sim.Config()
	spread := cfg.SmoothingRadius * 0.5
	for i := 0; i < 5; i++ {
		fi := float64(i)
		t.sim.AddParticle(x+math.Sin(fi*2.4)*spread, y+math.Cos(fi*2.4)*spread)
	}
}

// toWorld maps a terminal cell onto domain coordinates.
func (t *Terminal) toWorld(mx, my int) (float64, float64) {
	cfg := t.sim.Config()
	usableRows := t.rows - 1 // top row is the HUD
	if t.cols <= 0 || usableRows <= 0 {
		return 0, 0
	}
	x := (float64(mx) + 0.5) / float64(t.cols) * cfg.Width
	y := (float64(my-1) + 0.5) / float64(usableRows) * cfg.Height
	return x, y
}

// toCell maps domain coordinates onto a terminal cell.
func (t *Terminal) toCell(x, y float64) (int, int) {
	cfg := t.sim.Config()
	usableRows := t.rows - 1
	cx := int(x / cfg.Width * float64(t.cols))
	cy := 1 + int(y/cfg.Height*float64(usableRows))
	return cx, cy
}

func (t *Terminal) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	snap := t.sim.Snapshot()
	cfg := t.sim.Config()

	for _, b := range snap.Barriers {
		t.drawLine(b.A[0], b.A[1], b.B[0], b.B[1])
	}

	for _, p := range snap.Particles {
		cx, cy := t.toCell(p.X, p.Y)
		if !t.inView(cx, cy) {
			continue
		}
		shade := int(p.Density / cfg.RestDensity * float64(len(shades)-1))
		if shade >= len(shades) {
			shade = len(shades) - 1
		}
		if shade < 0 {
			shade = 0
		}
		termbox.SetCell(cx, cy, shades[shade], speedColor(p.VX, p.VY), termbox.ColorDefault)
	}

	for _, f := range snap.Foam {
		cx, cy := t.toCell(f.X, f.Y)
		if t.inView(cx, cy) {
			termbox.SetCell(cx, cy, '°', termbox.ColorWhite, termbox.ColorDefault)
		}
	}

	for _, b := range snap.Bodies {
		t.drawBody(b)
	}

	t.drawHUD(snap)
	termbox.Flush()
}

func (t *Terminal) inView(cx, cy int) bool {
	return cx >= 0 && cx < t.cols && cy >= 1 && cy < t.rows
}

// speedColor shades a particle by how fast it moves.
func speedColor(vx, vy float64) termbox.Attribute {
	switch speed := math.Hypot(vx, vy); {
	case speed > 400:
		return termbox.ColorWhite
	case speed > 150:
		return termbox.ColorCyan
	default:
		return termbox.ColorBlue
	}
}

func (t *Terminal) drawBody(b fluid.BodyState) {
	ch := 'O'
	if b.Shape == "cube" {
		ch = '#'
	}
	// Fill the body's extent cell by cell.
	for dy := -b.Radius; dy <= b.Radius; dy += 4 {
		for dx := -b.Radius; dx <= b.Radius; dx += 4 {
			if dx*dx+dy*dy > b.Radius*b.Radius {
				continue
			}
			cx, cy := t.toCell(b.X+dx, b.Y+dy)
			if t.inView(cx, cy) {
				termbox.SetCell(cx, cy, ch, termbox.ColorYellow, termbox.ColorDefault)
			}
		}
	}
}

// drawLine walks the segment in world space at sub-cell resolution.
func (t *Terminal) drawLine(x1, y1, x2, y2 float64) {
	dx := x2 - x1
	dy := y2 - y1
	steps := int(math.Hypot(dx, dy) / 2)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		cx, cy := t.toCell(x1+dx*f, y1+dy*f)
		if t.inView(cx, cy) {
			termbox.SetCell(cx, cy, '▒', termbox.ColorRed, termbox.ColorDefault)
		}
	}
}

func (t *Terminal) drawHUD(snap fluid.Snapshot) {
	mode := "pour"
	if t.barrierMode {
		mode = "barrier"
	}
	hud := fmt.Sprintf("g:%.1f v:%.1f t:%.1f particles:%d foam:%d energy:%.0f mode:%s",
		snap.Gravity, snap.Viscosity, snap.SurfaceTension,
		len(snap.Particles), len(snap.Foam), snap.KineticEnergy, mode)
	for i, r := range hud {
		if i >= t.cols {
			break
		}
		termbox.SetCell(i, 0, r, termbox.ColorGreen, termbox.ColorDefault)
	}
}

func (t *Terminal) log(f io.Writer, vals ...interface{}) {
	if f == nil {
		return
	}
	fmt.Fprintf(f, "X:%d \t Y:%d\n", vals...)
}
