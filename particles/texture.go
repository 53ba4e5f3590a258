package particles

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"
)

// TextureProvider supplies base sprite of a particle.
// Returned image must not be modified by the caller: it is shared by every particle using the provider.
type TextureProvider interface {
	Texture() image.Image
}

// circleKappa is control point distance for approximating a quarter of circle with cubic Bezier curve
const circleKappa = 0.5522847498

// CircleTexture is filled anti-aliased disc on transparent square canvas.
type CircleTexture struct {
	radius int
	color  color.Color
	img    *image.RGBA
}

// NewCircleTexture rasterizes disc of given radius once. Non-positive radius gives empty texture
func NewCircleTexture(radius int, c color.Color) *CircleTexture {
	texture := &CircleTexture{
		radius: radius,
		color:  c,
	}
	if radius <= 0 {
		texture.img = image.NewRGBA(image.Rectangle{})
		return texture
	}
	side := 2 * radius
	texture.img = image.NewRGBA(image.Rect(0, 0, side, side))

	r := float32(radius)
	k := r * circleKappa
	z := vector.NewRasterizer(side, side)
	z.MoveTo(2*r, r)
	z.CubeTo(2*r, r+k, r+k, 2*r, r, 2*r)
	z.CubeTo(r-k, 2*r, 0, r+k, 0, r)
	z.CubeTo(0, r-k, r-k, 0, r, 0)
	z.CubeTo(r+k, 0, 2*r, r-k, 2*r, r)
	z.ClosePath()
	z.Draw(texture.img, texture.img.Bounds(), image.NewUniform(c), image.Point{})
	return texture
}

// Texture implements TextureProvider
func (texture *CircleTexture) Texture() image.Image {
	return texture.img
}

// Radius returns disc radius
func (texture *CircleTexture) Radius() int {
	return texture.radius
}

// ImageTexture returns the same previously loaded image every time.
type ImageTexture struct {
	img image.Image
}

// NewImageTexture wraps image. Nil image is treated as empty texture
func NewImageTexture(img image.Image) *ImageTexture {
	if img == nil {
		img = image.NewRGBA(image.Rectangle{})
	}
	return &ImageTexture{img: img}
}

// Texture implements TextureProvider
func (texture *ImageTexture) Texture() image.Image {
	return texture.img
}
