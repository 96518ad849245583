package scripting

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/flandre-go/flandre/internal/core/ecs"
	"github.com/flandre-go/flandre/internal/core/event"
	"github.com/flandre-go/flandre/internal/data"
	"github.com/flandre-go/flandre/internal/gfx"
	"github.com/flandre-go/flandre/internal/input"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Deps are the host collaborators the flandre module talks to. Any of them may
// be nil; the functions that need a missing collaborator raise a Lua error.
type Deps struct {
	Backend gfx.Backend
	Input   *input.State
	Bus     *event.Bus
	Now     func() time.Time
}

// Engine wraps a single gopher-lua VM and binds it to an entity registry.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm   *lua.LState
	reg  *ecs.Registry
	deps Deps
	log  *zap.Logger

	started    time.Time
	entityMeta *lua.LTable
	tables     map[*lua.LTable]ecs.Handle

	iterateHook lua.LValue
	drawHook    lua.LValue
	terminated  bool

	scriptHash string
}

// NewEngine creates a Lua VM with the standard libraries and the flandre module.
func NewEngine(reg *ecs.Registry, deps Deps, log *zap.Logger) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{
		vm:          vm,
		reg:         reg,
		deps:        deps,
		log:         log,
		started:     deps.Now(),
		tables:      make(map[*lua.LTable]ecs.Handle, 256),
		iterateHook: lua.LNil,
		drawHook:    lua.LNil,
	}
	e.openFlandre()

	if deps.Bus != nil {
		reg.SetFailureHook(func(f ecs.Failure) {
			event.Emit(deps.Bus, event.EntitySuspended{Failure: f, ScriptHash: e.scriptHash})
		})
	}
	return e
}

// VM exposes the Lua state for tests and tooling.
func (e *Engine) VM() *lua.LState { return e.vm }

// ScriptHash returns the blake2b-256 fingerprint of the loaded scripts, hex.
func (e *Engine) ScriptHash() string { return e.scriptHash }

// Terminated reports whether a script called flandre.system.terminate().
func (e *Engine) Terminated() bool { return e.terminated }

// Load runs the manifest's preload scripts then its entry from dir. Sources are
// decoded from encoding to UTF-8. A failing preload script aborts the load; a
// failing entry script is logged and the engine keeps running with whatever the
// entry managed to set up.
func (e *Engine) Load(dir string, m *data.Manifest, encoding string) error {
	e.addPackagePath(dir)

	files := m.Files()
	sources := make([]Source, 0, len(files))
	for _, name := range files {
		src, err := ReadSource(filepath.Join(dir, filepath.FromSlash(name)), encoding)
		if err != nil {
			return err
		}
		src.Name = name
		sources = append(sources, src)
	}
	e.scriptHash = Fingerprint(sources)

	entry := len(sources) - 1
	for i, src := range sources {
		if err := e.run(src); err != nil {
			if i == entry {
				e.log.Error("lua entry script error", zap.String("file", src.Name), zap.Error(err))
				return nil
			}
			return fmt.Errorf("load %s: %w", src.Name, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", src.Name))
	}
	return nil
}

// DoString runs a chunk; used by tests and the REPL-style tools.
func (e *Engine) DoString(chunk string) error {
	return e.run(Source{Name: "=(string)", Text: chunk})
}

func (e *Engine) run(src Source) error {
	fn, err := e.vm.Load(strings.NewReader(src.Text), src.Name)
	if err != nil {
		return err
	}
	return e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	})
}

// addPackagePath lets scripts require modules that live next to the entry.
func (e *Engine) addPackagePath(dir string) {
	pkg, ok := e.vm.GetGlobal("package").(*lua.LTable)
	if !ok {
		return
	}
	dir = filepath.ToSlash(dir)
	old := lua.LVAsString(pkg.RawGetString("path"))
	pkg.RawSetString("path", lua.LString(dir+"/?.lua;"+dir+"/?/init.lua;"+old))
}

// Update runs the global iterate hook, then the entity update pass.
func (e *Engine) Update() error {
	e.callHook("iterate", &e.iterateHook)
	return e.reg.Dispatch(ecs.EventUpdate)
}

// Draw runs the global draw hook, then the entity draw pass.
func (e *Engine) Draw() error {
	e.callHook("draw", &e.drawHook)
	return e.reg.Dispatch(ecs.EventDraw)
}

// callHook calls the global per-frame hook held in slot. The hook may
// register a replacement while it runs. A failing hook is logged and, unless
// it was already replaced, cleared so it does not fail again every frame.
func (e *Engine) callHook(name string, slot *lua.LValue) {
	fn := *slot
	if fn.Type() != lua.LTFunction {
		return
	}
	err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	})
	if err == nil {
		return
	}
	e.log.Error("lua callback error, callback removed", zap.String("callback", name), zap.Error(err))
	if *slot == fn {
		*slot = lua.LNil
	}
}

// Close destroys every entity and shuts down the Lua VM.
func (e *Engine) Close() {
	e.reg.DestroyAll()
	clear(e.tables)
	e.vm.Close()
}
