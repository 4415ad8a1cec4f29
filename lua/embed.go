package lua

import "embed"

// CoreScripts holds the Lua prelude loaded before user scripts.
//
//go:embed core/*.lua
var CoreScripts embed.FS
