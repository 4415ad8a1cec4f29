package lua

import glua "github.com/yuin/gopher-lua"

// registerCoreFuncs registers internal winsize._* primitives (wrapped by Lua)
func (e *Engine) registerCoreFuncs() {
	// winsize._print(text): Outputs text to the UI
	e.L.SetField(e.table, "_print", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Print(L.CheckString(1))
		return 0
	}))

	e.L.SetField(e.table, "width", glua.LNumber(0))
	e.L.SetField(e.table, "height", glua.LNumber(0))
}
