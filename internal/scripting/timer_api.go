package scripting

import lua "github.com/yuin/gopher-lua"

func (e *Engine) timerModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"milliseconds": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.deps.Now().Sub(e.started).Milliseconds()))
			return 1
		},
		"nanoseconds": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.deps.Now().Sub(e.started).Nanoseconds()))
			return 1
		},
		// counter/frequency form a high resolution pair, as in SDL.
		"counter": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.deps.Now().Sub(e.started).Nanoseconds()))
			return 1
		},
		"frequency": func(L *lua.LState) int {
			L.Push(lua.LNumber(1e9))
			return 1
		},
	})
}
