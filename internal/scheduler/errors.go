// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

// Error codes for scheduler invariant violations. Both are raised as panics.
const (
	CodeMissingTick = "SCHEDULER_MISSING_TICK"
	CodeHeapCorrupt = "SCHEDULER_HEAP_CORRUPT"
)
