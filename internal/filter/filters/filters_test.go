package filters

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/value"
	"github.com/dshills/darkroom/internal/filter"
	"github.com/dshills/darkroom/internal/filter/factory"
)

func newFactory(t *testing.T) *factory.Factory {
	t.Helper()
	f := factory.New(filter.Env{Logger: zerolog.Nop()})
	if err := RegisterAll(f); err != nil {
		t.Fatalf("RegisterAll failed: %v", err)
	}
	return f
}

func newFilter(t *testing.T, typeName string) *filter.Filter {
	t.Helper()
	flt, err := newFactory(t).New(typeName, typeName+"1", "")
	if err != nil {
		t.Fatalf("New(%s) failed: %v", typeName, err)
	}
	return flt
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d <= tol && d >= -tol
}

func TestRegisterAll(t *testing.T) {
	f := newFactory(t)

	want := []string{TypeColorBoost, TypeExposure, TypeResize, TypeToneCurve}
	if diff := cmp.Diff(want, f.Types()); diff != "" {
		t.Errorf("Types (-want +got):\n%s", diff)
	}
	if err := RegisterAll(f); !errors.Is(err, factory.ErrDuplicateRegistration) {
		t.Errorf("second RegisterAll error = %v, want ErrDuplicateRegistration", err)
	}
}

func TestDefaultsAreInactive(t *testing.T) {
	for _, typeName := range []string{TypeExposure, TypeColorBoost, TypeToneCurve, TypeResize} {
		t.Run(typeName, func(t *testing.T) {
			if newFilter(t, typeName).IsActive() {
				t.Errorf("%s active with default config", typeName)
			}
		})
	}
}

func TestExposure(t *testing.T) {
	flt := newFilter(t, TypeExposure)
	flt.Dispatch("amount", value.Double(1))
	if !flt.IsActive() {
		t.Fatal("exposure +1 should be active")
	}

	out, err := flt.Run(solid(2, 2, color.RGBA{R: 60, G: 100, B: 200, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	got := out.RGBAAt(0, 0)
	if !near(got.R, 120, 1) || !near(got.G, 200, 1) || got.B != 255 {
		t.Errorf("clipped +1 EV = %v, want {120 200 255}", got)
	}

	flt.Dispatch("clip", value.Bool(false))
	out, _ = flt.Run(solid(1, 1, color.RGBA{R: 60, G: 100, B: 200, A: 255}))
	got = out.RGBAAt(0, 0)
	// Brightest channel 400/255 is scaled back to 1
	if got.B != 255 || !near(got.R, 77, 1) || !near(got.G, 128, 1) {
		t.Errorf("unclipped +1 EV = %v, want hue preserving compression", got)
	}
}

func TestExposure_PreservesTransparency(t *testing.T) {
	flt := newFilter(t, TypeExposure)
	flt.Dispatch("amount", value.Double(-1))

	out, _ := flt.Run(solid(1, 1, color.RGBA{}))
	if got := out.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("transparent pixel became %v", got)
	}
}

func TestColorBoost(t *testing.T) {
	flt := newFilter(t, TypeColorBoost)

	grey := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	flt.Dispatch("strength", value.Double(1))
	out, _ := flt.Run(solid(1, 1, grey))
	if got := out.RGBAAt(0, 0); got != grey {
		t.Errorf("grey changed to %v", got)
	}

	out, _ = flt.Run(solid(1, 1, color.RGBA{R: 150, G: 100, B: 100, A: 255}))
	if got := out.RGBAAt(0, 0); got.R <= 150 || got.G >= 100 {
		t.Errorf("saturation boost = %v, want red pushed away from grey", got)
	}

	flt.Dispatch("strength", value.Double(-1))
	out, _ = flt.Run(solid(1, 1, color.RGBA{R: 200, G: 50, B: 50, A: 255}))
	got := out.RGBAAt(0, 0)
	if !near(got.R, got.G, 1) || !near(got.G, got.B, 1) {
		t.Errorf("strength -1 = %v, want greyscale", got)
	}
}

func TestToneCurve_Anchors(t *testing.T) {
	c := CurveOf(Anchor{0.75, 0.25}, Anchor{0.25, 0.5})
	c.Set("x_09", value.Double(0.5)) // no matching y_09

	want := []Anchor{{0.25, 0.5}, {0.75, 0.25}}
	if diff := cmp.Diff(want, AnchorsFrom(c)); diff != "" {
		t.Errorf("anchors (-want +got):\n%s", diff)
	}
	if got := AnchorsFrom(nil); len(got) != 0 {
		t.Errorf("AnchorsFrom(nil) = %v", got)
	}
}

func TestToneCurve(t *testing.T) {
	flt := newFilter(t, TypeToneCurve)

	// Identity anchors have no effect
	flt.Dispatch("curve", value.Map(CurveOf(Anchor{0.5, 0.5})))
	if flt.IsActive() {
		t.Error("identity curve should be inactive")
	}

	flt.Dispatch("curve", value.Map(CurveOf(Anchor{0, 1}, Anchor{1, 0})))
	if !flt.IsActive() {
		t.Fatal("inverting curve should be active")
	}
	out, _ := flt.Run(solid(1, 1, color.RGBA{R: 0, G: 255, B: 51, A: 255}))
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 255, G: 0, B: 204, A: 255}) {
		t.Errorf("inverted = %v", got)
	}

	flt.Dispatch("channel", value.Int(ChannelRed))
	out, _ = flt.Run(solid(1, 1, color.RGBA{R: 0, G: 255, B: 51, A: 255}))
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 255, G: 255, B: 51, A: 255}) {
		t.Errorf("red only = %v", got)
	}
}

func TestToneCurve_PresetFormat(t *testing.T) {
	flt := newFilter(t, TypeToneCurve)
	flt.Dispatch("curve", value.Map(CurveOf(Anchor{0.5, 0.7})))

	tr := settings.NewTree()
	flt.ExportPreset(tr, true)
	if v, ok := tr.Value("ToneCurve/ToneCurve1/curveFormat"); !ok || !v.Equal(value.Int(curveFormat)) {
		t.Errorf("curveFormat = %v, %v", v, ok)
	}

	other := newFilter(t, TypeToneCurve)
	if err := other.ImportPreset(tr, false); err != nil {
		t.Fatalf("ImportPreset failed: %v", err)
	}
	if !other.IsActive() {
		t.Error("imported curve not active")
	}

	before, _ := other.Config().Store("curve")
	before = before.Clone()
	tr.SetValue("ToneCurve/ToneCurve1/curveFormat", value.Int(curveFormat+1))
	tr.SetValue("ToneCurve/ToneCurve1/curve", value.Map(CurveOf(Anchor{0.5, 0.9})))
	if err := other.ImportPreset(tr, false); err == nil {
		t.Error("newer curve format should be reported")
	}
	after, _ := other.Config().Store("curve")
	if !after.Equal(before) {
		t.Errorf("rejected import changed curve to %v, want %v", after, before)
	}

	fresh := newFilter(t, TypeToneCurve)
	if err := fresh.ImportPreset(tr, false); err == nil {
		t.Error("newer curve format should be reported")
	}
	if fresh.IsActive() {
		t.Error("rejected curve made the filter active")
	}
}

func TestResize(t *testing.T) {
	flt := newFilter(t, TypeResize)

	if flt.SetHidden(true) {
		t.Error("resize must not be hideable")
	}

	flt.Dispatch("size", value.Int(50))
	if flt.IsActive() {
		t.Error("resize active while disabled")
	}
	flt.Dispatch("enabled", value.Bool(true))
	if !flt.IsActive() {
		t.Fatal("resize should be active")
	}

	for _, interp := range []int64{InterpolationNearest, InterpolationBilinear, InterpolationCatmullRom} {
		flt.Dispatch("interpolation", value.Int(interp))
		out, err := flt.Run(solid(200, 100, color.RGBA{R: 10, G: 20, B: 30, A: 255}))
		if err != nil {
			t.Fatal(err)
		}
		if b := out.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
			t.Errorf("interpolation %d: size = %v, want 50x25", interp, b)
		}
		if got := out.RGBAAt(10, 10); !near(got.R, 10, 1) || !near(got.B, 30, 1) {
			t.Errorf("interpolation %d: colour = %v", interp, got)
		}
	}

	// Same size is a pass-through
	img := solid(50, 10, color.RGBA{A: 255})
	out, _ := flt.Run(img)
	if out != img {
		t.Error("resize to current size should return the input")
	}
}
