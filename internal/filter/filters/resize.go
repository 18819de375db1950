package filters

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/store"
	"github.com/dshills/darkroom/internal/filter"
)

// Resize interpolation methods, stored as the combo index.
const (
	InterpolationNearest = iota
	InterpolationBilinear
	InterpolationCatmullRom
)

var resizeSchema = schema.MustNew(TypeResize,
	schema.Check("enabled", false).WithCaption("Enable"),
	schema.Numeric("size", 1200, 0).WithCaption("Long edge (px)"),
	schema.Combo("interpolation", InterpolationCatmullRom, "Nearest", "Bilinear", "Catmull-Rom").
		WithCaption("Interpolation"),
)

// Resize scales the image so its long edge matches size. It is part of
// the output path and cannot be hidden.
type Resize struct{}

// Schema implements filter.Impl.
func (*Resize) Schema() *schema.Schema { return resizeSchema }

// Capabilities implements filter.Capable.
func (*Resize) Capabilities() filter.Capabilities {
	return filter.AllCapabilities.Without(filter.Hideable)
}

// HasActiveConfig implements filter.Impl.
func (*Resize) HasActiveConfig(cfg *store.Store) bool {
	enabledV, _ := cfg.Value("enabled")
	enabled, _ := enabledV.AsBool()
	size, _ := cfg.Value("size")
	return enabled && size.Float() > 0
}

// Run implements filter.Impl.
func (*Resize) Run(img *image.RGBA, cfg *store.Store) (*image.RGBA, error) {
	sizeV, _ := cfg.Value("size")
	interpV, _ := cfg.Value("interpolation")
	interp, _ := interpV.AsInt()

	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	long := max(w, h)
	size := int(sizeV.Float())
	if long == 0 || size <= 0 || size == long {
		return img, nil
	}

	scale := float64(size) / float64(long)
	dw := max(1, int(math.Round(float64(w)*scale)))
	dh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	scalerFor(interp).Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst, nil
}

func scalerFor(interp int64) draw.Scaler {
	switch interp {
	case InterpolationNearest:
		return draw.NearestNeighbor
	case InterpolationBilinear:
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}
