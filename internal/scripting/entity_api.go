package scripting

import (
	"errors"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/flandre-go/flandre/internal/core/ecs"
)

// Callback slots looked up on entity tables.
const (
	slotUpdate = "on_update"
	slotDraw   = "on_draw"
)

// luaEntity is the registry object behind an entity table. Unset or non-function
// slots are no-ops.
type luaEntity struct {
	e     *Engine
	table *lua.LTable
}

func (o *luaEntity) Update(ecs.Handle) error { return o.call(slotUpdate) }
func (o *luaEntity) Draw(ecs.Handle) error   { return o.call(slotDraw) }

func (o *luaEntity) call(slot string) error {
	fn := o.table.RawGetString(slot)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	return o.e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, o.table)
}

func (e *Engine) entityModule() *lua.LTable {
	e.entityMeta = e.vm.NewTable()
	e.entityMeta.RawSetString("__index", e.vm.NewFunction(e.entityIndex))
	e.entityMeta.RawSetString("__newindex", e.vm.NewFunction(e.entityNewIndex))
	e.entityMeta.RawSetString("__metatable", lua.LString("flandre.entity"))

	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"new":   e.lEntityNew,
		"kill":  e.lEntityKill,
		"alive": e.lEntityAlive,
		"count": e.lEntityCount,
	})
}

// handleOf resolves an entity table; killed tables resolve to false.
func (e *Engine) handleOf(t *lua.LTable) (ecs.Handle, bool) {
	h, ok := e.tables[t]
	return h, ok
}

// entity.new([layer]) -> entity
func (e *Engine) lEntityNew(L *lua.LState) int {
	layer := e.layerArg(L, 1)
	t := L.NewTable()
	L.SetMetatable(t, e.entityMeta)

	h, err := e.reg.Create(layer, &luaEntity{e: e, table: t})
	if err != nil {
		if errors.Is(err, ecs.ErrOutOfMemory) {
			L.RaiseError("failed to create new entity node")
		}
		L.RaiseError("%s", err.Error())
		return 0
	}
	e.tables[t] = h
	L.Push(t)
	return 1
}

// layerArg reads an optional layer number. Values past either end map to the
// nearest bound before the int conversion so the registry can warn and clamp.
func (e *Engine) layerArg(L *lua.LState, n int) int {
	v := float64(L.OptNumber(n, 0))
	switch top := float64(e.reg.Layers()); {
	case math.IsNaN(v):
		L.ArgError(n, "layer is not a number")
	case v < -1:
		return -1
	case v > top:
		return int(top)
	}
	return int(v)
}

// entity.kill(entity); killing twice is a no-op.
func (e *Engine) lEntityKill(L *lua.LState) int {
	t := L.CheckTable(1)
	h, ok := e.handleOf(t)
	if !ok {
		return 0
	}
	delete(e.tables, t)
	e.reg.Destroy(h)
	return 0
}

// entity.alive(entity) -> bool
func (e *Engine) lEntityAlive(L *lua.LState) int {
	t := L.CheckTable(1)
	h, ok := e.handleOf(t)
	L.Push(lua.LBool(ok && e.reg.Alive(h)))
	return 1
}

// entity.count([layer]) -> int
func (e *Engine) lEntityCount(L *lua.LState) int {
	if L.GetTop() >= 1 {
		L.Push(lua.LNumber(e.reg.LayerLen(L.CheckInt(1))))
		return 1
	}
	L.Push(lua.LNumber(e.reg.Len()))
	return 1
}

// __index serves the registry-backed fields: active, id, layer.
func (e *Engine) entityIndex(L *lua.LState) int {
	t := L.CheckTable(1)
	key, ok := L.Get(2).(lua.LString)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	h, live := e.handleOf(t)
	switch string(key) {
	case "active":
		L.Push(lua.LBool(live && e.reg.Active(h)))
	case "id":
		if !live {
			L.Push(lua.LNil)
			break
		}
		L.Push(lua.LNumber(h))
	case "layer":
		layer, ok := e.reg.Layer(h)
		if !live || !ok {
			L.Push(lua.LNil)
			break
		}
		L.Push(lua.LNumber(layer))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// __newindex routes active to the registry and stores everything else raw.
func (e *Engine) entityNewIndex(L *lua.LState) int {
	t := L.CheckTable(1)
	key := L.Get(2)
	val := L.Get(3)
	if s, ok := key.(lua.LString); ok {
		switch string(s) {
		case "active":
			if h, live := e.handleOf(t); live {
				e.reg.SetActive(h, lua.LVAsBool(val))
			}
			return 0
		case "id", "layer":
			L.RaiseError("entity field %q is read-only", string(s))
			return 0
		}
	}
	t.RawSet(key, val)
	return 0
}
