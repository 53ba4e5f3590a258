// Package particles implements lifecycle and compositing of short-lived sprites.
//
// A System owns particles. Each tick ages every particle, lets its Updater mutate
// the visual state and drops particles older than the configured maximum age.
// Render draws surviving particles oldest first, so newer ones end up on top.
//
// Texture providers and updaters are shared between many particles and are never owned by them:
// callers keep them alive for as long as any particle references them.
package particles

import (
	"github.com/LdDl/jugglefx/geom"
)

// Particle is a transient sprite anchored at absolute pixel location.
type Particle struct {
	// Center of the sprite in absolute pixel coordinates
	Location geom.Point
	// Width and height in pixels
	Size geom.Point
	// Rotation in degrees, counter-clockwise as displayed
	Rotation float64
	// Blend weight, 0 is invisible and 1 is opaque
	Opacity float64
	// Number of ticks since spawn
	Age int

	texture TextureProvider
	updater Updater
}

// Texture returns provider of particle's sprite
func (p *Particle) Texture() TextureProvider {
	return p.texture
}

// Updater returns particle's updater. Could be nil
func (p *Particle) Updater() Updater {
	return p.updater
}
