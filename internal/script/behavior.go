// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package script runs actor behaviors written in Lua.
//
// A script defines a global function act(ctx) that is called once per turn
// with a table holding the actor's id, x, y and the current time. It returns
// either {kind = "move", direction = "ne"} or {kind = "noop", duration = 2}.
// Anything else makes the actor wait one time unit.
//
// Scripts run in a sandbox with the base, table, string and math libraries.
// Randomness must come from rng_int(min, max), which draws from the
// simulation stream so replays stay deterministic. can_move(direction)
// reports whether a move would currently be accepted.
//
//	function act(ctx)
//	  if can_move("n") and rng_int(1, 4) > 1 then
//	    return { kind = "move", direction = "n" }
//	  end
//	  return { kind = "noop", duration = 2 }
//	end
package script

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/holomush/turnsim/internal/action"
	"github.com/holomush/turnsim/internal/rng"
	"github.com/holomush/turnsim/internal/world"
	"github.com/holomush/turnsim/pkg/errutil"
)

// DefaultTimeout bounds a single act call in wall-clock time. It is a
// safety net, not part of the simulation: a script running close to it may
// finish in one run and time out in a replay, so act must stay far below it.
const DefaultTimeout = 100 * time.Millisecond

// MaxHostCalls bounds the host function calls of a single act call. It
// counts work rather than time, so it trips at the same point on every run.
const MaxHostCalls = 256

// stateful is implemented by random sources whose position can be rewound.
type stateful interface {
	State() rng.State
	Restore(rng.State) error
}

const entryPoint = "act"

// Behavior chooses actions by calling a Lua script. It is safe for
// concurrent use; every call runs in a fresh state.
type Behavior struct {
	name    string
	proto   *lua.FunctionProto
	engine  *action.Engine
	timeout time.Duration
}

// Option configures a Behavior.
type Option func(*Behavior)

// WithTimeout bounds a single act call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Behavior) {
		b.timeout = d
	}
}

// Load reads and compiles the script at path.
func Load(path string, engine *action.Engine, opts ...Option) (*Behavior, error) {
	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.In("script").Code(CodeReadFailed).With("path", path).Wrap(err)
	}
	return Compile(filepath.Base(path), string(code), engine, opts...)
}

// Compile compiles source and checks that it defines act.
func Compile(name, source string, engine *action.Engine, opts ...Option) (*Behavior, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, oops.In("script").Code(CodeSyntax).With("script", name).Wrap(err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, oops.In("script").Code(CodeSyntax).With("script", name).Wrap(err)
	}

	b := &Behavior{name: name, proto: proto, engine: engine, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(b)
	}

	L, err := newSandbox()
	if err != nil {
		return nil, err
	}
	defer L.Close()
	if err := b.run(L); err != nil {
		return nil, oops.In("script").Code(CodeSyntax).With("script", name).Hint("top-level code failed").Wrap(err)
	}
	if L.GetGlobal(entryPoint).Type() != lua.LTFunction {
		return nil, oops.In("script").Code(CodeMissingAct).With("script", name).Errorf("script does not define %s(ctx)", entryPoint)
	}
	return b, nil
}

// Name returns the script name.
func (b *Behavior) Name() string { return b.name }

// Choose calls act for id. Script failures are logged and the actor waits.
// A failed call leaves a stateful random source where it was, so a timeout
// never shifts the stream seen by later turns.
func (b *Behavior) Choose(id string, env action.Env) action.Action {
	wait := action.Noop{Actor: id, Duration: 1}

	var rewind func()
	if src, ok := env.RNG.(stateful); ok {
		st := src.State()
		rewind = func() {
			if err := src.Restore(st); err != nil {
				slog.Warn("rewind random source", "script", b.name, "error", err)
			}
		}
	}

	ctx := context.Background()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	a, err := b.call(ctx, id, env)
	if err != nil {
		if rewind != nil {
			rewind()
		}
		errutil.LogError(ctx, slog.Default(), "script act failed", oops.In("script").With("script", b.name).With("actor", id).Wrap(err))
		return wait
	}
	if a == nil {
		return wait
	}
	return a
}

func (b *Behavior) call(ctx context.Context, id string, env action.Env) (action.Action, error) {
	L, err := newSandbox()
	if err != nil {
		return nil, err
	}
	defer L.Close()

	L.SetContext(ctx)
	b.register(L, id, env)
	if err := b.run(L); err != nil {
		return nil, err
	}

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(entryPoint),
		NRet:    1,
		Protect: true,
	}, b.contextTable(L, id, env)); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return b.parseAction(id, ret), nil
}

func (b *Behavior) run(L *lua.LState) error {
	L.Push(L.NewFunctionFromProto(b.proto))
	return L.PCall(0, lua.MultRet, nil)
}

func (b *Behavior) contextTable(L *lua.LState, id string, env action.Env) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(id))
	if env.World != nil {
		if p, ok := env.World.PositionOf(id); ok {
			L.SetField(t, "x", lua.LNumber(p.X))
			L.SetField(t, "y", lua.LNumber(p.Y))
		}
	}
	if env.Clock != nil {
		L.SetField(t, "time", lua.LNumber(env.Clock.Time()))
	}
	return t
}

// register exposes the host functions for one call.
func (b *Behavior) register(L *lua.LState, id string, env action.Env) {
	calls := 0
	host := func(fn lua.LGFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			if calls++; calls > MaxHostCalls {
				L.RaiseError("host call budget of %d exhausted", MaxHostCalls)
				return 0
			}
			return fn(L)
		})
	}

	L.SetGlobal("rng_int", host(func(L *lua.LState) int {
		lo, hi := L.CheckInt(1), L.CheckInt(2)
		if env.RNG == nil {
			L.RaiseError("rng_int: no random source")
			return 0
		}
		L.Push(lua.LNumber(env.RNG.IntegerInRange(lo, hi)))
		return 1
	}))

	L.SetGlobal("can_move", host(func(L *lua.LState) int {
		d, err := world.ParseDirection(L.CheckString(1))
		if err != nil || b.engine == nil {
			L.Push(lua.LFalse)
			return 1
		}
		_, ok := b.engine.Validate(action.Move{Actor: id, Direction: d}, env)
		L.Push(lua.LBool(ok))
		return 1
	}))

	L.SetGlobal("log", host(func(L *lua.LState) int {
		slog.Debug("script log", "script", b.name, "actor", id, "message", L.CheckString(1))
		return 0
	}))
}

func (b *Behavior) parseAction(id string, ret lua.LValue) action.Action {
	t, ok := ret.(*lua.LTable)
	if !ok {
		slog.Debug("script returned no action table", "script", b.name, "actor", id, "type", ret.Type().String())
		return nil
	}

	switch kind := lua.LVAsString(t.RawGetString("kind")); action.Kind(kind) {
	case action.KindMove:
		d, err := world.ParseDirection(lua.LVAsString(t.RawGetString("direction")))
		if err != nil {
			slog.Debug("script returned invalid direction", "script", b.name, "actor", id, "error", err)
			return nil
		}
		return action.Move{Actor: id, Direction: d}
	case action.KindNoop:
		duration := 1
		if n, ok := t.RawGetString("duration").(lua.LNumber); ok {
			duration = int(n)
		}
		return action.Noop{Actor: id, Duration: duration}
	default:
		slog.Debug("script returned unknown action kind", "script", b.name, "actor", id, "kind", kind)
		return nil
	}
}
