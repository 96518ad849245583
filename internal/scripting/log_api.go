package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (e *Engine) logModule() *lua.LTable {
	return e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"info":  e.logAt(zapcore.InfoLevel),
		"warn":  e.logAt(zapcore.WarnLevel),
		"error": e.logAt(zapcore.ErrorLevel),
	})
}

// logAt joins all arguments with tostring semantics, like print.
func (e *Engine) logAt(level zapcore.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		if ce := e.log.Check(level, strings.Join(parts, " ")); ce != nil {
			ce.Write(zap.String("source", "lua"), zap.String("where", L.Where(1)))
		}
		return 0
	}
}
