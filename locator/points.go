package locator

import (
	"image"

	"github.com/LdDl/jugglefx/geom"
)

// ExtractPoints returns coordinates of all non-zero pixels in single channel image.
// Coordinates are absolute pixel coordinates relative to image bounds origin.
func ExtractPoints(img *image.Gray) []geom.Point {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	result := make([]geom.Point, 0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := img.PixOffset(bounds.Min.X, y)
		row := img.Pix[offset : offset+bounds.Dx()]
		for i, pixel := range row {
			if pixel != 0 {
				result = append(result, geom.NewPointFrom(image.Pt(i, y-bounds.Min.Y)))
			}
		}
	}
	return result
}
