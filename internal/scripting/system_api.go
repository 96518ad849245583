package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/flandre-go/flandre/internal/core/event"
)

var windowOptions = []string{"size", "title", "fullscreen"}

func (e *Engine) systemModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"window":    e.lWindow,
		"terminate": e.lTerminate,
	})
}

// window(option) reads, window(option, ...) writes.
func (e *Engine) lWindow(L *lua.LState) int {
	opt := L.CheckOption(1, windowOptions)
	b := e.deps.Backend
	if b == nil {
		L.RaiseError("no window backend")
		return 0
	}
	if L.GetTop() == 1 {
		switch opt {
		case 0:
			w, h := b.Size()
			L.Push(lua.LNumber(w))
			L.Push(lua.LNumber(h))
			return 2
		case 1:
			L.Push(lua.LString(b.Title()))
			return 1
		default:
			L.Push(lua.LBool(b.Fullscreen()))
			return 1
		}
	}
	switch opt {
	case 0:
		b.SetSize(L.CheckInt(2), L.CheckInt(3))
	case 1:
		b.SetTitle(L.CheckString(2))
	default:
		b.SetFullscreen(L.ToBool(2))
	}
	return 0
}

// terminate() stops the frame loop before the next frame. Calling it twice is
// an error.
func (e *Engine) lTerminate(L *lua.LState) int {
	if e.terminated {
		L.RaiseError("attempt to terminate the program twice")
		return 0
	}
	e.terminated = true
	e.log.Info("flandre.system.terminate has been called, stopping at the next frame",
		zap.String("where", L.Where(1)),
	)
	if e.deps.Bus != nil {
		event.Emit(e.deps.Bus, event.TerminateRequested{})
	}
	return 0
}
