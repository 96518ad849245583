package scripting

import (
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/flandre-go/flandre/internal/gfx"
)

func (e *Engine) graphicsModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"clear": func(L *lua.LState) int {
			e.backend(L).Clear()
			return 0
		},
		// text(x, y, s[, color])
		"text": func(L *lua.LState) int {
			b := e.backend(L)
			b.Text(L.CheckInt(1), L.CheckInt(2), L.CheckString(3), L.OptString(4, ""))
			return 0
		},
		// fill(x, y, w, h[, char[, color]])
		"fill": func(L *lua.LState) int {
			b := e.backend(L)
			ch := ' '
			if s := L.OptString(5, " "); s != "" {
				ch, _ = utf8.DecodeRuneInString(s)
			}
			b.Fill(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), ch, L.OptString(6, ""))
			return 0
		},
		"size": func(L *lua.LState) int {
			w, h := e.backend(L).Size()
			L.Push(lua.LNumber(w))
			L.Push(lua.LNumber(h))
			return 2
		},
	})
}

// backend returns the render backend or raises a Lua error.
func (e *Engine) backend(L *lua.LState) gfx.Backend {
	if e.deps.Backend == nil {
		L.RaiseError("no graphics backend")
	}
	return e.deps.Backend
}
