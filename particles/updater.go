package particles

import (
	"math"

	"github.com/LdDl/jugglefx/geom"
)

// Updater mutates particle's state once per tick, after its age has been incremented.
// Updaters are shared between particles, so implementations must not keep per-particle state.
type Updater interface {
	Apply(p *Particle)
}

// UpdaterFunc is an adapter to use ordinary functions as updaters
type UpdaterFunc func(p *Particle)

// Apply calls f(p)
func (f UpdaterFunc) Apply(p *Particle) {
	f(p)
}

// IntensityProgression scales size and opacity geometrically each tick.
// Rates below 1 model shrink and decay, rates above 1 model growth.
type IntensityProgression struct {
	SizeRate  float64
	AlphaRate float64
}

// Apply implements Updater
func (u IntensityProgression) Apply(p *Particle) {
	p.Size = p.Size.Scale(u.SizeRate)
	p.Opacity *= u.AlphaRate
}

// Velocity moves particle by a vector which decays geometrically each tick.
// On tick with age N particle moves by Vector*Decay^(N-1), so the decay is tracked per particle
// even though a single Velocity value is shared.
type Velocity struct {
	Vector geom.Point
	Decay  float64
}

// Apply implements Updater
func (u Velocity) Apply(p *Particle) {
	exponent := p.Age - 1
	if exponent < 0 {
		exponent = 0
	}
	p.Location = p.Location.Add(u.Vector.Scale(math.Pow(u.Decay, float64(exponent))))
}

// Composite applies updaters in order
type Composite []Updater

// Apply implements Updater
func (c Composite) Apply(p *Particle) {
	for _, updater := range c {
		if updater == nil {
			continue
		}
		updater.Apply(p)
	}
}
