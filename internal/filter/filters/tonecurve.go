package filters

import (
	"cmp"
	"fmt"
	"image"
	"slices"
	"strconv"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/store"
	"github.com/dshills/darkroom/internal/config/value"
)

// Tone curve channels, stored as the combo index.
const (
	ChannelRGB = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
)

// curveFormat is written to presets next to the anchors.
const (
	curveFormat    = 1
	keyCurveFormat = "curveFormat"
)

var toneCurveSchema = schema.MustNew(TypeToneCurve,
	schema.Combo("channel", ChannelRGB, "RGB", "Red", "Green", "Blue").WithCaption("Channel"),
	schema.Collection("curve", nil).WithCaption("Curve"),
)

// Anchor is one control point of a tone curve. Both coordinates are in
// [0, 1].
type Anchor struct {
	X, Y float64
}

// AnchorsFrom reads anchors stored as "x_NN"/"y_NN" pairs. Incomplete
// pairs are skipped. The result is sorted by X.
func AnchorsFrom(c *value.Collection) []Anchor {
	xs := make(map[int]float64)
	ys := make(map[int]float64)
	c.Range(func(key string, v value.Value) bool {
		axis, idx, ok := parseAnchorKey(key)
		if !ok {
			return true
		}
		if axis == 'x' {
			xs[idx] = v.Float()
		} else {
			ys[idx] = v.Float()
		}
		return true
	})

	anchors := make([]Anchor, 0, len(xs))
	for idx, x := range xs {
		if y, ok := ys[idx]; ok {
			anchors = append(anchors, Anchor{X: clamp01(x), Y: clamp01(y)})
		}
	}
	slices.SortFunc(anchors, func(a, b Anchor) int { return cmp.Compare(a.X, b.X) })
	return anchors
}

// CurveOf stores anchors in the "x_NN"/"y_NN" layout.
func CurveOf(anchors ...Anchor) *value.Collection {
	c := value.NewCollection()
	for i, a := range anchors {
		c.Set(fmt.Sprintf("x_%02d", i), value.Double(a.X))
		c.Set(fmt.Sprintf("y_%02d", i), value.Double(a.Y))
	}
	return c
}

func parseAnchorKey(key string) (byte, int, bool) {
	if len(key) < 3 || (key[0] != 'x' && key[0] != 'y') || key[1] != '_' {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(key[2:])
	if err != nil || idx < 0 {
		return 0, 0, false
	}
	return key[0], idx, true
}

// ToneCurve remaps channel values through a piecewise linear curve.
type ToneCurve struct{}

// Schema implements filter.Impl.
func (*ToneCurve) Schema() *schema.Schema { return toneCurveSchema }

// HasActiveConfig reports whether any anchor moves a value off the
// identity line.
func (*ToneCurve) HasActiveConfig(cfg *store.Store) bool {
	c, _ := cfg.Store("curve")
	for _, a := range AnchorsFrom(c) {
		if a.X != a.Y {
			return true
		}
	}
	return false
}

// Run implements filter.Impl.
func (*ToneCurve) Run(img *image.RGBA, cfg *store.Store) (*image.RGBA, error) {
	c, _ := cfg.Store("curve")
	chV, _ := cfg.Value("channel")
	channel, _ := chV.AsInt()
	lut := buildLUT(AnchorsFrom(c))

	apply := func(v float64) float64 { return lut[to8(v)] }
	return mapRGB(img, func(r, g, b float64) (float64, float64, float64) {
		switch channel {
		case ChannelRed:
			return apply(r), g, b
		case ChannelGreen:
			return r, apply(g), b
		case ChannelBlue:
			return r, g, apply(b)
		default:
			return apply(r), apply(g), apply(b)
		}
	}), nil
}

// ExportPreset writes the anchor layout version.
func (*ToneCurve) ExportPreset(t *settings.Tree, _ bool) {
	t.SetValue(keyCurveFormat, value.Int(curveFormat))
}

// ImportPreset rejects anchors written in a newer layout, which keeps
// the current curve.
func (*ToneCurve) ImportPreset(t *settings.Tree) error {
	raw, ok := t.Value(keyCurveFormat)
	if !ok {
		return nil
	}
	v, err := raw.Convert(value.KindInt)
	if err != nil {
		return fmt.Errorf("%s: %w", keyCurveFormat, err)
	}
	if n, _ := v.AsInt(); n > curveFormat {
		return fmt.Errorf("%s %d is newer than supported %d", keyCurveFormat, n, curveFormat)
	}
	return nil
}

// buildLUT interpolates the anchors into a 256 entry table. The curve is
// pinned at (0,0) and (1,1) unless anchors sit on those ends.
func buildLUT(anchors []Anchor) [256]float64 {
	pts := make([]Anchor, 0, len(anchors)+2)
	if len(anchors) == 0 || anchors[0].X > 0 {
		pts = append(pts, Anchor{0, 0})
	}
	pts = append(pts, anchors...)
	if pts[len(pts)-1].X < 1 {
		pts = append(pts, Anchor{1, 1})
	}

	var lut [256]float64
	seg := 0
	for i := range lut {
		x := float64(i) / 255
		for seg < len(pts)-2 && x > pts[seg+1].X {
			seg++
		}
		a, b := pts[seg], pts[seg+1]
		if b.X == a.X {
			lut[i] = b.Y
			continue
		}
		t := (x - a.X) / (b.X - a.X)
		lut[i] = clamp01(a.Y + t*(b.Y-a.Y))
	}
	return lut
}
