// Package script runs Lua batch scripts against the filter engine.
//
// Every run gets a fresh sandboxed gopher-lua state with only the base,
// table, string and math libraries, plus a "darkroom" module:
//
//	darkroom.set(filter, id, value)   -- dispatch a value, same path as a control
//	darkroom.get(filter, id)          -- current value or custom store
//	darkroom.block(filter, on)        -- returns false if not blockable
//	darkroom.hide(filter, on)
//	darkroom.favourite(filter, on)
//	darkroom.reset(filter)
//	darkroom.active(filter)
//	darkroom.filters()                -- every filter name in layout order
//	darkroom.actives()                -- active filter names in pipeline order
//	darkroom.log(msg)
//
// Lua tables with only string values in sequence become string lists;
// other tables become collections keyed by their string form.
package script
