package filters

import (
	"image"
	"math"
)

// rgbFunc transforms one straight-alpha colour with channels in [0, 1].
type rgbFunc func(r, g, b float64) (float64, float64, float64)

// mapRGB applies fn to every pixel of src and returns a new image.
// Pixels are un-premultiplied before fn and re-premultiplied after; alpha
// is preserved.
func mapRGB(src *image.RGBA, fn rgbFunc) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		si := src.PixOffset(bounds.Min.X, y)
		di := dst.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x, si, di = x+1, si+4, di+4 {
			a := src.Pix[si+3]
			if a == 0 {
				continue
			}
			af := float64(a) / 255
			r := float64(src.Pix[si]) / 255 / af
			g := float64(src.Pix[si+1]) / 255 / af
			b := float64(src.Pix[si+2]) / 255 / af

			r, g, b = fn(r, g, b)

			dst.Pix[di] = to8(r * af)
			dst.Pix[di+1] = to8(g * af)
			dst.Pix[di+2] = to8(b * af)
			dst.Pix[di+3] = a
		}
	}
	return dst
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// luminance uses Rec. 709 weights.
func luminance(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}
