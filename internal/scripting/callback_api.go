package scripting

import lua "github.com/yuin/gopher-lua"

func (e *Engine) callbackModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"iterate": func(L *lua.LState) int {
			e.iterateHook = L.CheckFunction(1)
			return 0
		},
		"draw": func(L *lua.LState) int {
			e.drawHook = L.CheckFunction(1)
			return 0
		},
	})
}
