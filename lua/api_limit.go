package lua

import (
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/drake/winsize/ratelimit"
)

// registerLimitFuncs registers winsize._limit(policy, seconds, fn).
// It returns a Lua function that forwards its arguments to fn through a
// rate limiter on the host clock.
func (e *Engine) registerLimitFuncs() {
	e.L.SetField(e.table, "_limit", e.L.NewFunction(func(L *glua.LState) int {
		policy, err := ratelimit.ParsePolicy(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		delay := toDuration(L.CheckNumber(2))
		fn := L.CheckFunction(3)

		limiter := ratelimit.New(policy, func(args []glua.LValue) {
			e.invoke(fn, args)
		}, delay, e.host.Clock())
		e.limiters = append(e.limiters, limiter)

		L.Push(L.NewFunction(func(L *glua.LState) int {
			args := make([]glua.LValue, L.GetTop())
			for i := range args {
				args[i] = L.Get(i + 1)
			}
			limiter.Call(args)
			return 0
		}))
		return 1
	}))
}

// invoke runs a script callback, reporting failures through the error hook.
func (e *Engine) invoke(fn *glua.LFunction, args []glua.LValue) {
	if e.L == nil {
		return
	}
	if err := e.L.CallByParam(glua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.logger.Warn().Err(err).Msg("rate-limited callback failed")
		e.host.Print("[script error] " + err.Error())
		e.CallHook("error", glua.LString(err.Error()))
	}
}

// toDuration converts Lua number seconds to Go duration
func toDuration(seconds glua.LNumber) time.Duration {
	return time.Duration(float64(seconds) * float64(time.Second))
}
