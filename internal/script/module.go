package script

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/darkroom/internal/config/value"
	"github.com/dshills/darkroom/internal/filter"
)

const moduleName = "darkroom"

type module struct {
	host Host
	log  zerolog.Logger
}

func (m *module) register(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"set":       m.set,
		"get":       m.get,
		"block":     m.block,
		"hide":      m.hide,
		"favourite": m.favourite,
		"reset":     m.reset,
		"active":    m.active,
		"filters":   m.filters,
		"actives":   m.actives,
		"log":       m.logMsg,
	})
	L.SetGlobal(moduleName, mod)
	L.SetGlobal("print", L.NewFunction(m.print))
}

// checkFilter resolves argument n to a filter or raises.
func (m *module) checkFilter(L *lua.LState, n int) *filter.Filter {
	name := L.CheckString(n)
	f, ok := m.host.Filter(name)
	if !ok {
		L.RaiseError("%v: %s", ErrUnknownFilter, name)
		return nil
	}
	return f
}

// set(filter, id, value)
func (m *module) set(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	id := L.CheckString(2)
	v, err := fromLua(L.CheckAny(3))
	if err != nil {
		L.ArgError(3, err.Error())
		return 0
	}
	f.Dispatch(id, v)
	return 0
}

// get(filter, id) -> value or nil
func (m *module) get(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	id := L.CheckString(2)

	if c, ok := f.Config().Store(id); ok {
		L.Push(toLua(L, value.Map(c)))
		return 1
	}
	v, err := f.Value(id)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(L, v))
	return 1
}

// block(filter, on) -> bool
func (m *module) block(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	L.Push(lua.LBool(f.SetBlocked(L.OptBool(2, true))))
	return 1
}

// hide(filter, on) -> bool
func (m *module) hide(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	L.Push(lua.LBool(f.SetHidden(L.OptBool(2, true))))
	return 1
}

// favourite(filter, on) -> bool
func (m *module) favourite(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	L.Push(lua.LBool(f.SetFavourite(L.OptBool(2, true))))
	return 1
}

// reset(filter)
func (m *module) reset(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	f.Reset(true)
	return 0
}

// active(filter) -> bool
func (m *module) active(L *lua.LState) int {
	f := m.checkFilter(L, 1)
	L.Push(lua.LBool(f.IsActive()))
	return 1
}

func (m *module) filters(L *lua.LState) int {
	L.Push(stringArray(L, m.host.FilterNames()))
	return 1
}

func (m *module) actives(L *lua.LState) int {
	L.Push(stringArray(L, m.host.ActiveNames()))
	return 1
}

func (m *module) logMsg(L *lua.LState) int {
	m.log.Info().Msg(L.CheckString(1))
	return 0
}

func (m *module) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]any, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	m.log.Info().Msg(fmt.Sprint(parts...))
	return 0
}

func stringArray(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for _, s := range items {
		t.Append(lua.LString(s))
	}
	return t
}

// fromLua converts a script argument to a configuration value.
func fromLua(lv lua.LValue) (value.Value, error) {
	switch v := lv.(type) {
	case lua.LBool:
		return value.Bool(bool(v)), nil
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return value.Int(int64(f)), nil
		}
		return value.Double(f), nil
	case lua.LString:
		return value.String(string(v)), nil
	case *lua.LTable:
		return tableValue(v)
	default:
		return value.Value{}, fmt.Errorf("cannot convert %s", lv.Type())
	}
}

func tableValue(t *lua.LTable) (value.Value, error) {
	if list, ok := stringList(t); ok {
		return value.StringList(list), nil
	}

	c := value.NewCollection()
	var err error
	t.ForEach(func(k, lv lua.LValue) {
		if err != nil {
			return
		}
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = strconv.FormatFloat(float64(kv), 'f', -1, 64)
		default:
			err = fmt.Errorf("unsupported table key %s", k.Type())
			return
		}
		if _, nested := lv.(*lua.LTable); nested {
			err = fmt.Errorf("nested table at %s", key)
			return
		}
		var item value.Value
		if item, err = fromLua(lv); err == nil {
			c.Set(key, item)
		}
	})
	if err != nil {
		return value.Value{}, err
	}
	return value.Map(c), nil
}

// stringList reports whether t is a non-empty sequence of strings.
func stringList(t *lua.LTable) ([]string, bool) {
	n := t.Len()
	if n == 0 {
		return nil, false
	}
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })
	if count != n {
		return nil, false
	}
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		s, ok := t.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, false
		}
		out = append(out, string(s))
	}
	return out, true
}

// toLua converts a configuration value for a script.
func toLua(L *lua.LState, v value.Value) lua.LValue {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case value.KindInt, value.KindDouble:
		return lua.LNumber(v.Float())
	case value.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case value.KindStringList:
		list, _ := v.AsStringList()
		return stringArray(L, list)
	case value.KindCollection:
		c, _ := v.AsCollection()
		keys := c.Keys()
		sort.Strings(keys)
		t := L.CreateTable(0, len(keys))
		for _, k := range keys {
			item, _ := c.Get(k)
			t.RawSetString(k, toLua(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}
