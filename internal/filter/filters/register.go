package filters

import (
	"errors"

	"github.com/dshills/darkroom/internal/filter"
	"github.com/dshills/darkroom/internal/filter/factory"
)

// Type names, which are also the preset group prefixes.
const (
	TypeExposure   = "Exposure"
	TypeColorBoost = "ColorBoost"
	TypeToneCurve  = "ToneCurve"
	TypeResize     = "Resize"
)

// RegisterAll binds every built-in filter type on f.
func RegisterAll(f *factory.Factory) error {
	return errors.Join(
		f.Register(TypeExposure, func() filter.Impl { return &Exposure{} }),
		f.Register(TypeColorBoost, func() filter.Impl { return &ColorBoost{} }),
		f.Register(TypeToneCurve, func() filter.Impl { return &ToneCurve{} }),
		f.Register(TypeResize, func() filter.Impl { return &Resize{} }),
	)
}
