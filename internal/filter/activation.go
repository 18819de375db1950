package filter

// IsActive reports whether the filter takes part in the pipeline.
func (f *Filter) IsActive() bool {
	return f.active
}

// HasActiveConfig reports the result of the last activation check.
func (f *Filter) HasActiveConfig() bool {
	return f.hasActiveCfg
}

// IsBlocked reports whether the user switched the filter off.
func (f *Filter) IsBlocked() bool {
	return f.blocked
}

// IsHidden reports whether the filter is in the global hidden list.
func (f *Filter) IsHidden() bool {
	return f.env.Policy.IsHidden(f.uniqueName)
}

// IsFavourite reports whether the filter is in the global favourite list.
func (f *Filter) IsFavourite() bool {
	return f.env.Policy.IsFavourite(f.uniqueName)
}

// CheckActiveChanged recomputes the activation state and keeps the active
// list in sync. Unless suppress is set, observers are told about a flip.
// It reports whether the state changed.
func (f *Filter) CheckActiveChanged(suppress bool) bool {
	f.mustHaveName()

	old := f.active
	f.hasActiveCfg = f.impl.HasActiveConfig(f.cfg)
	f.active = f.hasActiveCfg && !f.blocked && !f.IsHidden()

	if f.active == old {
		return false
	}

	f.updateActivesList()
	f.env.Metrics.RecordActivationChange(f.uniqueName, f.active)
	f.log.Debug().Bool("active", f.active).Msg("activation changed")

	if !suppress {
		f.notifier.NotifyActivation(f.uniqueName, f.active)
	}
	return true
}

// RequestPipeRun asks the pipeline executor to re-run from this filter
// when forced, when the activation just flipped, or when the filter is
// active.
func (f *Filter) RequestPipeRun(unconditional bool) {
	if unconditional || f.CheckActiveChanged(false) || f.active {
		f.env.Metrics.RecordPipeRunRequest(f.uniqueName)
		if f.env.Pipeline != nil {
			f.env.Pipeline.Update(f.uniqueName)
		}
	}
}

// SetBlocked switches the filter off or back on. It returns false when
// the filter type cannot be blocked.
func (f *Filter) SetBlocked(blocked bool) bool {
	if !f.caps.Has(Blockable) {
		return false
	}
	if blocked == f.blocked {
		return true
	}

	f.blocked = blocked
	f.toggled()
	return true
}

// SetHidden adds the filter to or removes it from the global hidden list.
// A hidden filter is inactive. It returns false when the filter type
// cannot be hidden.
func (f *Filter) SetHidden(hidden bool) bool {
	if !f.caps.Has(Hideable) {
		return false
	}
	if !f.env.Policy.SetHidden(f.uniqueName, hidden) {
		return true
	}

	f.toggled()
	return true
}

// SetFavourite adds the filter to or removes it from the global favourite
// list. Favourites have no effect on processing.
func (f *Filter) SetFavourite(favourite bool) bool {
	if !f.caps.Has(Favouriteable) {
		return false
	}
	f.env.Policy.SetFavourite(f.uniqueName, favourite)
	return true
}

// toggled runs after a blocked or hidden flag flipped. The GUI is
// refreshed before the pipe run so it shows the new state first.
func (f *Filter) toggled() {
	changed := f.CheckActiveChanged(false)
	f.updateActivesList()

	if f.view != nil {
		f.view.Refresh()
	}
	if changed || f.active {
		f.RequestPipeRun(true)
	}
}

func (f *Filter) updateActivesList() {
	if f.env.Actives == nil {
		return
	}
	f.env.Actives.UpdateActivesList(f)
	f.env.Metrics.SetActiveFilters(f.env.Actives.Len())
}
