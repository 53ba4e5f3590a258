package particles

import (
	"strings"

	"github.com/LdDl/jugglefx/geom"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var (
	// ErrNegativeSize is returned when particle is spawned with negative width or height
	ErrNegativeSize = errors.New("particle size must be non-negative")
	// ErrNegativeOpacity is returned when particle is spawned with negative opacity
	ErrNegativeOpacity = errors.New("particle opacity must be non-negative")
	// ErrNilTexture is returned when particle is spawned without texture provider
	ErrNilTexture = errors.New("particle texture provider is nil")
)

// BlendMode is how sprite is combined with destination pixels
type BlendMode uint16

const (
	// BlendOver is dest = sprite*opacity + dest*(1-opacity), weighted by sprite's own alpha
	BlendOver BlendMode = iota
	// BlendAdditive is dest = dest + sprite*opacity, saturated
	BlendAdditive
)

// ParseBlendMode converts textual blend mode ("over", "additive") into BlendMode
func ParseBlendMode(name string) (BlendMode, error) {
	switch strings.ToLower(name) {
	case "", "over":
		return BlendOver, nil
	case "additive", "add":
		return BlendAdditive, nil
	default:
		return BlendOver, errors.Errorf("unknown blend mode '%s'", name)
	}
}

// ParseInterpolator converts textual name into one of golang.org/x/image/draw interpolators
func ParseInterpolator(name string) (draw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "nearest", "nearest-neighbor":
		return draw.NearestNeighbor, nil
	case "", "approx-bilinear":
		return draw.ApproxBiLinear, nil
	case "bilinear":
		return draw.BiLinear, nil
	case "catmull-rom":
		return draw.CatmullRom, nil
	default:
		return nil, errors.Errorf("unknown interpolator '%s'", name)
	}
}

// System is mutable collection of particles.
// It is not safe for concurrent use: a frame loop owns it exclusively.
type System struct {
	// Live particles, oldest spawned first
	particles []Particle
	// Particles older than this are removed on tick. Default is 10
	maxAge       int
	interpolator draw.Interpolator
	blend        BlendMode
}

// SystemOption configures System
type SystemOption func(*System)

// WithMaxAge sets maximum particle age
func WithMaxAge(maxAge int) SystemOption {
	return func(system *System) {
		system.maxAge = maxAge
	}
}

// WithInterpolator sets resampling algorithm used for rotating and scaling sprites. Default is draw.ApproxBiLinear
func WithInterpolator(interpolator draw.Interpolator) SystemOption {
	return func(system *System) {
		if interpolator != nil {
			system.interpolator = interpolator
		}
	}
}

// WithBlendMode sets compositing mode. Default is BlendOver
func WithBlendMode(blend BlendMode) SystemOption {
	return func(system *System) {
		system.blend = blend
	}
}

// NewSystem creates empty particle system
func NewSystem(options ...SystemOption) *System {
	system := &System{
		particles:    make([]Particle, 0),
		maxAge:       10,
		interpolator: draw.ApproxBiLinear,
		blend:        BlendOver,
	}
	for _, option := range options {
		option(system)
	}
	return system
}

// Spawn adds particle with age 0.
// Negative size or opacity and nil texture provider are rejected, system stays unchanged.
// Nil updater is allowed: such particle only ages.
func (system *System) Spawn(location, size geom.Point, rotation, opacity float64, texture TextureProvider, updater Updater) error {
	if size.X < 0 || size.Y < 0 {
		return errors.Wrapf(ErrNegativeSize, "got %vx%v", size.X, size.Y)
	}
	if opacity < 0 {
		return errors.Wrapf(ErrNegativeOpacity, "got %v", opacity)
	}
	if texture == nil {
		return ErrNilTexture
	}
	system.particles = append(system.particles, Particle{
		Location: location,
		Size:     size,
		Rotation: rotation,
		Opacity:  opacity,
		Age:      0,
		texture:  texture,
		updater:  updater,
	})
	return nil
}

// Tick ages every particle by one, applies its updater and removes particles older than max age.
// Relative order of survivors is preserved.
func (system *System) Tick() {
	alive := system.particles[:0]
	for i := range system.particles {
		p := &system.particles[i]
		p.Age++
		if p.updater != nil {
			p.updater.Apply(p)
		}
		if p.Age > system.maxAge {
			continue
		}
		alive = append(alive, *p)
	}
	// Release references to providers and updaters of removed particles
	for i := len(alive); i < len(system.particles); i++ {
		system.particles[i] = Particle{}
	}
	system.particles = alive
}

// Len returns number of live particles
func (system *System) Len() int {
	return len(system.particles)
}

// Particles returns live particles, oldest first. Be careful: this is not copy of particles, but reference to them
func (system *System) Particles() []Particle {
	return system.particles
}

// Clear removes all particles
func (system *System) Clear() {
	for i := range system.particles {
		system.particles[i] = Particle{}
	}
	system.particles = system.particles[:0]
}

// MaxAge returns maximum particle age
func (system *System) MaxAge() int {
	return system.maxAge
}

// SetMaxAge changes maximum particle age. Takes effect on the next tick
func (system *System) SetMaxAge(maxAge int) {
	system.maxAge = maxAge
}
