package scripting

import lua "github.com/yuin/gopher-lua"

func (e *Engine) keyboardModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"is_down": func(L *lua.LState) int {
			name := L.CheckString(1)
			if e.deps.Input == nil {
				L.Push(lua.LFalse)
				return 1
			}
			L.Push(lua.LBool(e.deps.Input.KeyDown(name, e.deps.Now())))
			return 1
		},
	})
}

func (e *Engine) mouseModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"position": func(L *lua.LState) int {
			var x, y int
			if e.deps.Input != nil {
				x, y = e.deps.Input.MousePosition()
			}
			L.Push(lua.LNumber(x))
			L.Push(lua.LNumber(y))
			return 2
		},
		"button": func(L *lua.LState) int {
			var left, right, middle bool
			if e.deps.Input != nil {
				b := e.deps.Input.MouseButtons()
				left, right, middle = b.Left, b.Right, b.Middle
			}
			L.Push(lua.LBool(left))
			L.Push(lua.LBool(right))
			L.Push(lua.LBool(middle))
			return 3
		},
		"wheel": func(L *lua.LState) int {
			reset := L.ToBool(1)
			var w float64
			if e.deps.Input != nil {
				w = e.deps.Input.Wheel(reset)
			}
			L.Push(lua.LNumber(w))
			return 1
		},
	})
}
