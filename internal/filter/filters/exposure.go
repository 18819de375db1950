package filters

import (
	"image"
	"math"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/store"
)

var exposureSchema = schema.MustNew(TypeExposure,
	schema.Numeric("amount", 0, 2).WithCaption("Exposure (EV)"),
	schema.Check("clip", true).WithCaption("Clip highlights"),
)

// Exposure scales linear brightness by 2^amount.
type Exposure struct{}

// Schema implements filter.Impl.
func (*Exposure) Schema() *schema.Schema { return exposureSchema }

// HasActiveConfig implements filter.Impl.
func (*Exposure) HasActiveConfig(cfg *store.Store) bool {
	amount, _ := cfg.Value("amount")
	return amount.Float() != 0
}

// Run implements filter.Impl.
func (*Exposure) Run(img *image.RGBA, cfg *store.Store) (*image.RGBA, error) {
	amount, _ := cfg.Value("amount")
	clipV, _ := cfg.Value("clip")
	clip, _ := clipV.AsBool()
	factor := math.Exp2(amount.Float())

	return mapRGB(img, func(r, g, b float64) (float64, float64, float64) {
		r, g, b = r*factor, g*factor, b*factor
		if !clip {
			// Compress channels above 1 by the brightest one so hue survives
			if m := max(r, g, b); m > 1 {
				r, g, b = r/m, g/m, b/m
			}
		}
		return r, g, b
	}), nil
}
