package fluid

import "fmt"

// Scenarios are initial layouts expressed purely through the public
// interface, the same calls a UI would make. They carry no physics of their
// own.

// ApplyScenario loads a named preset into the simulation. Known names are
// "empty", "dam" and "waterfall".
func ApplyScenario(s *Simulation, name string) error {
	switch name {
	case "", "empty":
		return nil
	case "dam":
		damBreak(s)
		return nil
	case "waterfall":
		return waterfall(s)
	}
	return fmt.Errorf("fluid: unknown scenario %q", name)
}

// damBreak fills the left third of the domain with a block of resting fluid.
func damBreak(s *Simulation) {
	cfg := s.Config()
	spacing := cfg.SmoothingRadius * 0.55
	for y := cfg.Height - spacing; y > cfg.Height*0.35; y -= spacing {
		for x := spacing; x < cfg.Width*0.3; x += spacing {
			s.AddParticle(x, y)
		}
	}
}

// waterfall pours a column of fluid over two staggered barrier ledges.
func waterfall(s *Simulation) error {
	cfg := s.Config()
	if _, err := s.AddBarrier(cfg.Width*0.1, cfg.Height*0.35, cfg.Width*0.55, cfg.Height*0.45); err != nil {
		return err
	}
	if _, err := s.AddBarrier(cfg.Width*0.9, cfg.Height*0.6, cfg.Width*0.45, cfg.Height*0.7); err != nil {
		return err
	}

	spacing := cfg.SmoothingRadius * 0.55
	for y := spacing; y < cfg.Height*0.2; y += spacing {
		for x := cfg.Width * 0.15; x < cfg.Width*0.35; x += spacing {
			s.AddParticle(x, y)
		}
	}
	return nil
}
