package particles

import (
	"image"
	"image/color"
	"math"

	"github.com/LdDl/jugglefx/geom"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Render composites every live particle onto dst, oldest first.
// Particles partially outside of dst are clipped, particles fully outside or of zero size are skipped.
func (system *System) Render(dst *image.RGBA) {
	if dst == nil {
		return
	}
	for i := range system.particles {
		system.renderParticle(dst, &system.particles[i])
	}
}

func (system *System) renderParticle(dst *image.RGBA, p *Particle) {
	if p.texture == nil {
		return
	}
	opacity := geom.MinFloat64(p.Opacity, 1.0)
	if !(opacity > 0) {
		return
	}
	src := p.texture.Texture()
	if src == nil || src.Bounds().Empty() {
		return
	}
	width, height := math.Floor(p.Size.X), math.Floor(p.Size.Y)
	if !(width >= 1 && height >= 1) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return
	}
	left := math.Floor(p.Location.X - p.Size.X/2.0)
	top := math.Floor(p.Location.Y - p.Size.Y/2.0)
	if math.IsNaN(left) || math.IsNaN(top) || math.IsInf(left, 0) || math.IsInf(top, 0) {
		return
	}

	// Destination rectangle centered at location, clipped against dst on all four sides.
	// Clipping happens in floating point so huge particles never turn into huge buffers
	bounds := dst.Bounds()
	visible := image.Rect(
		int(clamp(left, float64(bounds.Min.X), float64(bounds.Max.X))),
		int(clamp(top, float64(bounds.Min.Y), float64(bounds.Max.Y))),
		int(clamp(left+width, float64(bounds.Min.X), float64(bounds.Max.X))),
		int(clamp(top+height, float64(bounds.Min.Y), float64(bounds.Max.Y))),
	)
	if visible.Empty() {
		return
	}

	sprite := system.transformed(src, visible, left, top, width, height, p.Rotation)
	switch system.blend {
	case BlendAdditive:
		addWeighted(dst, visible, sprite, opacity)
	default:
		mask := image.NewUniform(color.Alpha16{A: uint16(math.Round(opacity * 0xffff))})
		draw.DrawMask(dst, visible, sprite, image.Point{}, mask, image.Point{}, draw.Over)
	}
}

// transformed rotates src about its center by rotation degrees and resamples it to width x height in a single pass.
// Only the visible part is rasterized: sprite's origin is visible.Min while the full sprite starts at (left, top).
func (system *System) transformed(src image.Image, visible image.Rectangle, left, top, width, height, rotation float64) *image.RGBA {
	sprite := image.NewRGBA(image.Rect(0, 0, visible.Dx(), visible.Dy()))
	sr := src.Bounds()
	cx := float64(sr.Min.X) + float64(sr.Dx())/2.0
	cy := float64(sr.Min.Y) + float64(sr.Dy())/2.0
	kx := width / float64(sr.Dx())
	ky := height / float64(sr.Dy())
	tx := left - float64(visible.Min.X)
	ty := top - float64(visible.Min.Y)
	sin, cos := math.Sincos(rotation * math.Pi / 180.0)
	// translate(tx + width/2, ty + height/2) * scale(kx, ky) * rotate * translate(-cx, -cy)
	s2d := f64.Aff3{
		kx * cos, kx * sin, tx + width/2.0 - kx*(cos*cx+sin*cy),
		-ky * sin, ky * cos, ty + height/2.0 - ky*(-sin*cx+cos*cy),
	}
	system.interpolator.Transform(sprite, s2d, src, sr, draw.Src, nil)
	return sprite
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// addWeighted adds sprite scaled by opacity to dst, saturating every channel.
func addWeighted(dst *image.RGBA, r image.Rectangle, sprite *image.RGBA, opacity float64) {
	for y := 0; y < r.Dy(); y++ {
		dOffset := dst.PixOffset(r.Min.X, r.Min.Y+y)
		sOffset := sprite.PixOffset(0, y)
		for x := 0; x < r.Dx()*4; x++ {
			v := float64(dst.Pix[dOffset+x]) + float64(sprite.Pix[sOffset+x])*opacity
			if v > 255 {
				v = 255
			}
			dst.Pix[dOffset+x] = uint8(v + 0.5)
		}
	}
}
