package lua

import (
	"regexp"

	glua "github.com/yuin/gopher-lua"
)

const luaRegexTypeName = "Regex"

// registerRegexType registers the Regex userdata type.
func registerRegexType(L *glua.LState) {
	mt := L.NewTypeMetatable(luaRegexTypeName)
	L.SetField(mt, "__index", L.NewFunction(regexIndex))
}

// regexIndex handles method calls on Regex userdata.
func regexIndex(L *glua.LState) int {
	re := L.CheckUserData(1).Value.(*regexp.Regexp)

	switch L.CheckString(2) {
	case "match":
		L.Push(L.NewFunction(func(L *glua.LState) int {
			// Accept both re:match(s) and re.match(s)
			matches := re.FindStringSubmatch(L.CheckString(L.GetTop()))
			if matches == nil {
				L.Push(glua.LNil)
				return 1
			}
			tbl := L.NewTable()
			for i, m := range matches {
				tbl.RawSetInt(i+1, glua.LString(m))
			}
			L.Push(tbl)
			return 1
		}))
		return 1
	case "pattern":
		L.Push(glua.LString(re.String()))
		return 1
	}
	return 0
}

// registerRegexFuncs registers winsize.regex(pattern). Compiled patterns
// are cached by source.
func (e *Engine) registerRegexFuncs() {
	registerRegexType(e.L)

	e.L.SetField(e.table, "regex", e.L.NewFunction(func(L *glua.LState) int {
		pattern := L.CheckString(1)

		re, ok := e.regexCache.Get(pattern)
		if !ok {
			var err error
			re, err = regexp.Compile(pattern)
			if err != nil {
				L.Push(glua.LNil)
				L.Push(glua.LString(err.Error()))
				return 2
			}
			e.regexCache.Add(pattern, re)
		}

		ud := L.NewUserData()
		ud.Value = re
		L.SetMetatable(ud, L.GetTypeMetatable(luaRegexTypeName))
		L.Push(ud)
		return 1
	}))
}
