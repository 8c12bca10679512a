// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// PauseFunc reports whether the driver should stop before acting for id.
type PauseFunc func(id string) bool

// PauseOn pauses on any of ids.
func PauseOn(ids ...string) PauseFunc {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}
}

// PauseOnMatch pauses on ids matching a glob pattern such as "player:*".
// The empty pattern never pauses.
func PauseOnMatch(pattern string) (PauseFunc, error) {
	if pattern == "" {
		return Never, nil
	}
	g, err := glob.Compile(pattern, ':')
	if err != nil {
		return nil, oops.Code(CodeInvalidPattern).With("pattern", pattern).Wrap(err)
	}
	return g.Match, nil
}

// Never is a PauseFunc that never pauses.
func Never(string) bool { return false }
