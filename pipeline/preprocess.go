package pipeline

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Preprocess converts frame to grayscale, shrinks it by downscale factor and applies binary threshold:
// samples brighter than threshold become 255, the rest become 0.
// Resulting image always has at least one pixel per dimension unless frame is empty.
func Preprocess(frame image.Image, downscale float64, threshold uint8) *image.Gray {
	if frame == nil || frame.Bounds().Empty() {
		return image.NewGray(image.Rectangle{})
	}
	bounds := frame.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), frame, bounds.Min, draw.Src)

	small := gray
	if downscale > 0 && downscale != 1 {
		w := int(math.Round(float64(bounds.Dx()) * downscale))
		h := int(math.Round(float64(bounds.Dy()) * downscale))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		small = image.NewGray(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(small, small.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	}

	for i, v := range small.Pix {
		if v > threshold {
			small.Pix[i] = 255
		} else {
			small.Pix[i] = 0
		}
	}
	return small
}

// scaleFrame copies frame into new RGBA buffer scaled by given factor
func scaleFrame(frame image.Image, scale float64, interpolator draw.Interpolator) *image.RGBA {
	bounds := frame.Bounds()
	if scale == 1 {
		out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(out, out.Bounds(), frame, bounds.Min, draw.Src)
		return out
	}
	w := int(math.Round(float64(bounds.Dx()) * scale))
	h := int(math.Round(float64(bounds.Dy()) * scale))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	interpolator.Scale(out, out.Bounds(), frame, bounds, draw.Src, nil)
	return out
}
