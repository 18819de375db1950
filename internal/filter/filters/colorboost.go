package filters

import (
	"image"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/store"
)

// Colour boost modes, stored as the combo index.
const (
	BoostSaturation = iota
	BoostVibrance
)

var colorBoostSchema = schema.MustNew(TypeColorBoost,
	schema.Numeric("strength", 0, 2).WithCaption("Strength"),
	schema.Combo("mode", BoostSaturation, "Saturation", "Vibrance").WithCaption("Mode"),
)

// ColorBoost changes colour saturation. Vibrance mode favours muted
// colours over already saturated ones.
type ColorBoost struct{}

// Schema implements filter.Impl.
func (*ColorBoost) Schema() *schema.Schema { return colorBoostSchema }

// HasActiveConfig implements filter.Impl.
func (*ColorBoost) HasActiveConfig(cfg *store.Store) bool {
	strength, _ := cfg.Value("strength")
	return strength.Float() != 0
}

// Run implements filter.Impl.
func (*ColorBoost) Run(img *image.RGBA, cfg *store.Store) (*image.RGBA, error) {
	strengthV, _ := cfg.Value("strength")
	modeV, _ := cfg.Value("mode")
	strength := strengthV.Float()
	mode, _ := modeV.AsInt()

	return mapRGB(img, func(r, g, b float64) (float64, float64, float64) {
		k := strength
		if mode == BoostVibrance {
			sat := max(r, g, b) - min(r, g, b)
			k *= 1 - sat
		}
		l := luminance(r, g, b)
		f := 1 + k
		return l + (r-l)*f, l + (g-l)*f, l + (b-l)*f
	}), nil
}
