package scripting

import lua "github.com/yuin/gopher-lua"

// openFlandre builds the flandre module, registers it for require "flandre"
// and sets it as a global.
func (e *Engine) openFlandre() {
	mod := e.vm.NewTable()
	mod.RawSetString("entity", e.entityModule())
	mod.RawSetString("callback", e.callbackModule())
	mod.RawSetString("system", e.systemModule())
	mod.RawSetString("timer", e.timerModule())
	mod.RawSetString("keyboard", e.keyboardModule())
	mod.RawSetString("mouse", e.mouseModule())
	mod.RawSetString("graphics", e.graphicsModule())
	mod.RawSetString("log", e.logModule())

	e.vm.PreloadModule("flandre", func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	e.vm.SetGlobal("flandre", mod)
}
