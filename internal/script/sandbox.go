// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// library is a Lua library that is safe to open in a sandboxed state.
type library struct {
	name string
	fn   lua.LGFunction
}

// safeLibraries are base, table, string and math. os, io, debug and package
// are never opened.
var safeLibraries = []library{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blockedGlobals reach the filesystem or load code at runtime.
var blockedGlobals = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// blockedMath draw from a generator outside the simulation stream.
var blockedMath = []string{"random", "randomseed"}

// newSandbox creates a Lua state with only safe libraries loaded.
func newSandbox() (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range safeLibraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.In("script").With("library", lib.name).Wrapf(err, "open library")
		}
	}

	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		for _, name := range blockedMath {
			math.RawSetString(name, lua.LNil)
		}
	}
	return L, nil
}
