// Package lua hosts user scripts that react to terminal size changes.
package lua

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	glua "github.com/yuin/gopher-lua"

	"github.com/drake/winsize/size"
)

// canceler is satisfied by every ratelimit.Limiter instantiation.
type canceler interface {
	Cancel()
}

// Engine wraps gopher-lua and manages the VM lifecycle.
// It is not safe for concurrent use; the session loop owns it.
type Engine struct {
	L          *glua.LState
	regexCache *lru.Cache[string, *regexp.Regexp]

	// Cached table reference
	table *glua.LTable

	host   Host
	logger zerolog.Logger

	// Limiters created by scripts, cancelled on Init and Close
	limiters []canceler
}

// NewEngine creates an Engine with the given Host.
func NewEngine(host Host, logger zerolog.Logger) *Engine {
	cache, _ := lru.New[string, *regexp.Regexp](100)
	return &Engine{
		regexCache: cache,
		host:       host,
		logger:     logger,
	}
}

// --- Lifecycle ---

// Init (re)creates the Lua VM, registers the API and runs the embedded
// core scripts. User scripts are the caller's job.
func (e *Engine) Init() error {
	e.release()

	e.L = glua.NewState()
	e.regexCache.Purge()

	e.registerAPIs()

	entries, err := fs.ReadDir(CoreScripts, "core")
	if err != nil {
		return fmt.Errorf("reading core scripts: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := CoreScripts.ReadFile("core/" + file)
		if err != nil {
			return fmt.Errorf("core/%s: %w", file, err)
		}
		if err := e.DoString(file, string(content)); err != nil {
			return fmt.Errorf("core/%s: %w", file, err)
		}
	}

	e.UpdateSize(e.host.Size())
	return nil
}

// Close cancels script limiters and closes the VM.
func (e *Engine) Close() {
	e.release()
}

func (e *Engine) release() {
	for _, l := range e.limiters {
		l.Cancel()
	}
	e.limiters = nil
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
	e.table = nil
}

// --- Execution Primitives ---

// DoString executes a raw string of Lua code.
// The name parameter is used for stack traces.
func (e *Engine) DoString(name, code string) error {
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(fn)
	return e.L.PCall(0, 0, nil)
}

// DoFile executes a Lua file from the filesystem.
// It temporarily adjusts package.path to allow local requires.
func (e *Engine) DoFile(path string) error {
	path = expandTilde(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	pkg := e.L.GetGlobal("package").(*glua.LTable)
	oldPath := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(dir+"/?.lua;"+oldPath))

	err = e.L.DoFile(absPath)

	e.L.SetField(pkg, "path", glua.LString(oldPath))
	return err
}

// LoadScripts runs each script in order, stopping at the first failure.
func (e *Engine) LoadScripts(paths []string) error {
	for _, path := range paths {
		if err := e.DoFile(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		e.logger.Debug().Str("script", path).Msg("script loaded")
	}
	return nil
}

// --- Event Handlers ---

// OnResize updates winsize.width/height and calls the resize hooks.
func (e *Engine) OnResize(d size.Dimensions) {
	if e.L == nil {
		return
	}
	e.UpdateSize(d)
	e.CallHook("resize", glua.LNumber(d.Width), glua.LNumber(d.Height))
}

// UpdateSize pushes the size into the winsize table without running hooks.
func (e *Engine) UpdateSize(d size.Dimensions) {
	if e.L == nil || e.table == nil {
		return
	}
	e.L.SetField(e.table, "width", glua.LNumber(d.Width))
	e.L.SetField(e.table, "height", glua.LNumber(d.Height))
}

// CallHook calls winsize.hooks.call(event, args...).
func (e *Engine) CallHook(event string, args ...glua.LValue) {
	if e.L == nil {
		return
	}
	call := e.hooksCall()
	if call == glua.LNil {
		return
	}

	luaArgs := make([]glua.LValue, 0, len(args)+1)
	luaArgs = append(luaArgs, glua.LString(event))
	luaArgs = append(luaArgs, args...)

	if err := e.L.CallByParam(glua.P{
		Fn:      call,
		NRet:    0,
		Protect: true,
	}, luaArgs...); err != nil {
		e.logger.Warn().Err(err).Str("hook", event).Msg("hook dispatch failed")
	}
}

// hooksCall returns the winsize.hooks.call function, or LNil before the
// core scripts have run.
func (e *Engine) hooksCall() glua.LValue {
	hooks, ok := e.L.GetField(e.table, "hooks").(*glua.LTable)
	if !ok {
		return glua.LNil
	}
	return e.L.GetField(hooks, "call")
}

// --- API Registration ---

func (e *Engine) registerAPIs() {
	e.table = e.L.NewTable()
	e.L.SetGlobal("winsize", e.table)

	e.registerCoreFuncs()
	e.registerLimitFuncs()
	e.registerRegexFuncs()
}

// expandTilde expands ~ to home directory.
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
