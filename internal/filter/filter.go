// Package filter implements the configurable filter unit of the pipeline.
//
// A Filter owns the typed configuration of one pipeline stage and derives
// from it whether the stage currently takes part in processing:
//
//	active = hasActiveConfig && !blocked && !hidden
//
// Every configuration change, whatever its source, funnels through
// Dispatch or ImportPreset and ends in RequestPipeRun, the single place
// that decides whether the external pipeline executor must re-run from
// this filter. The concrete image transform and the "does my config have
// any effect" predicate are supplied by an Impl.
//
// Filters are driven from one control flow and are not safe for concurrent
// use.
package filter

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/config/notify"
	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/store"
	"github.com/dshills/darkroom/internal/config/value"
	"github.com/dshills/darkroom/internal/filter/actives"
	"github.com/dshills/darkroom/internal/metrics"
)

// Errors returned by filter lifecycle operations.
var (
	ErrEmptyName          = errors.New("filter unique name is empty")
	ErrAlreadyInitialized = errors.New("filter already initialized")
)

// Impl is the behaviour a concrete filter type provides.
type Impl interface {
	// Schema describes the configurable items. Its name is the filter
	// type name.
	Schema() *schema.Schema

	// HasActiveConfig reports whether cfg has any effect on the image.
	// It must be a pure function of cfg.
	HasActiveConfig(cfg *store.Store) bool

	// Run applies the transform. It must not keep state between calls.
	Run(img *image.RGBA, cfg *store.Store) (*image.RGBA, error)
}

// Capable is implemented by filter types that restrict their toggles.
type Capable interface {
	Capabilities() Capabilities
}

// Resetter is implemented by filter types with extra reset work.
type Resetter interface {
	Reset(cfg *store.Store)
}

// CustomConfigAdder may add default-store entries that have no schema
// item (derived or hidden values). Entries must be valid and must not
// reuse a schema id.
type CustomConfigAdder interface {
	AddCustomConfig(defaults map[string]value.Value)
}

// PresetExtender reads and writes filter-specific preset fields. The tree
// is already scoped to the filter's group. ImportPreset runs before any
// item is applied; an error keeps the custom stores unchanged.
type PresetExtender interface {
	ExportPreset(t *settings.Tree, includeFlags bool)
	ImportPreset(t *settings.Tree) error
}

// GuiUpdater is implemented by filter types that push extra state into
// their view.
type GuiUpdater interface {
	UpdateGui(v View, cfg *store.Store)
}

// Updater is the pipeline executor boundary: "recompute the output starting
// at uniqueName". It must not block.
type Updater interface {
	Update(uniqueName string)
}

// Policy is the access point for the global hidden and favourite lists.
// *settings.Policy implements it.
type Policy interface {
	IsHidden(name string) bool
	SetHidden(name string, hidden bool) bool
	IsFavourite(name string) bool
	SetFavourite(name string, favourite bool) bool
}

// Env carries the collaborators shared by every filter.
type Env struct {
	Actives  *actives.Registry
	Policy   Policy
	Pipeline Updater
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// Filter is one configurable pipeline stage.
type Filter struct {
	impl     Impl
	schema   *schema.Schema
	typeName string
	caps     Capabilities

	uniqueName    string
	captionSuffix string
	tab           int
	slot          int

	blocked      bool
	hasActiveCfg bool
	active       bool

	cfg      *store.Store
	notifier *notify.Notifier
	view     View

	env Env
	log zerolog.Logger
}

// New wraps impl. The filter is unusable until Init assigns its name.
func New(impl Impl, env Env) *Filter {
	if env.Policy == nil {
		env.Policy = settings.NewPolicy(nil)
	}
	caps := AllCapabilities
	if c, ok := impl.(Capable); ok {
		caps = c.Capabilities()
	}
	return &Filter{
		impl:     impl,
		schema:   impl.Schema(),
		typeName: impl.Schema().Name(),
		caps:     caps,
		tab:      -1,
		slot:     -1,
		cfg:      store.New(),
		notifier: notify.New(),
		env:      env,
		log:      env.Logger,
	}
}

// Init assigns the unique name, builds the configuration from the schema
// and runs the first activation check.
func (f *Filter) Init(uniqueName, captionSuffix string) error {
	if uniqueName == "" {
		return fmt.Errorf("%w (type %s)", ErrEmptyName, f.typeName)
	}
	if f.uniqueName != "" {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, f.uniqueName)
	}
	f.uniqueName = uniqueName
	f.captionSuffix = captionSuffix
	f.log = f.env.Logger.With().
		Str("filter", uniqueName).
		Str("type", f.typeName).
		Logger()

	if err := f.createConfig(); err != nil {
		f.uniqueName = ""
		return err
	}
	f.CheckActiveChanged(true)
	return nil
}

// createConfig seeds the store from the schema. Collection items become
// custom stores. On failure no custom store is left behind.
func (f *Filter) createConfig() error {
	defaults := f.schema.Defaults()
	for _, it := range f.schema.CustomItems() {
		c, _ := it.Default.AsCollection()
		f.cfg.NewStore(it.ID, c)
	}
	err := f.addCustomConfig(defaults)
	if err == nil {
		err = f.cfg.Init(defaults)
	}
	if err != nil {
		f.cfg.ClearCustomStores()
	}
	return err
}

func (f *Filter) addCustomConfig(defaults map[string]value.Value) error {
	adder, ok := f.impl.(CustomConfigAdder)
	if !ok {
		return nil
	}
	extra := make(map[string]value.Value)
	adder.AddCustomConfig(extra)
	for id, v := range extra {
		switch {
		case f.schema.Has(id):
			return &schema.SchemaError{Schema: f.typeName, ID: id, Message: "custom config shadows a schema item"}
		case !v.IsValid():
			return &schema.SchemaError{Schema: f.typeName, ID: id, Message: "custom config value is invalid"}
		}
		defaults[id] = v
	}
	return nil
}

// Close removes the filter from the active list and drops its observers.
func (f *Filter) Close() {
	if f.env.Actives != nil {
		f.env.Actives.Remove(f)
		f.env.Metrics.SetActiveFilters(f.env.Actives.Len())
	}
	f.notifier.Reset()
	f.view = nil
}

// UniqueName returns the name assigned by Init.
func (f *Filter) UniqueName() string {
	return f.uniqueName
}

// TypeName returns the filter type name.
func (f *Filter) TypeName() string {
	return f.typeName
}

// Caption returns the display name, the type name plus the caption suffix.
func (f *Filter) Caption() string {
	if f.captionSuffix == "" {
		return f.typeName
	}
	return f.typeName + " " + f.captionSuffix
}

// Schema returns the item descriptors.
func (f *Filter) Schema() *schema.Schema {
	return f.schema
}

// Capabilities returns the toggles this filter supports.
func (f *Filter) Capabilities() Capabilities {
	return f.caps
}

// Pos returns the tab and slot. Both are -1 until SetPos is called.
func (f *Filter) Pos() (tab, slot int) {
	return f.tab, f.slot
}

// SetPos moves the filter and re-sorts the active list.
func (f *Filter) SetPos(tab, slot int) {
	f.tab, f.slot = tab, slot
	if f.env.Actives != nil {
		f.env.Actives.UpdatePositions(f)
	}
}

// Config returns the filter's store. Callers outside the filter should
// change values through Dispatch so the pipeline is notified.
func (f *Filter) Config() *store.Store {
	return f.cfg
}

// Value returns the current value of a default-store item.
func (f *Filter) Value(id string) (value.Value, error) {
	return f.cfg.Value(id)
}

// Notifier returns the change notifier observers subscribe to.
func (f *Filter) Notifier() *notify.Notifier {
	return f.notifier
}

// Subscribe registers an observer for every change of this filter.
func (f *Filter) Subscribe(obs notify.Observer) *notify.Subscription {
	return f.notifier.Subscribe(obs)
}

// Run applies the filter's transform to img using the current config.
func (f *Filter) Run(img *image.RGBA) (*image.RGBA, error) {
	out, err := f.impl.Run(img, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", f.uniqueName, err)
	}
	return out, nil
}

// String implements fmt.Stringer.
func (f *Filter) String() string {
	return f.typeName + "/" + f.uniqueName
}

func (f *Filter) mustHaveName() {
	if f.uniqueName == "" {
		panic(fmt.Sprintf("filter %s used before Init", f.typeName))
	}
}
