// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

// Error codes for action failures.
const (
	CodeUnknownAction = "UNKNOWN_ACTION"
	CodeInvalidAction = "INVALID_ACTION"

	// The following are raised as panics: they mean a caller broke the
	// validate/commit contract.
	CodeCommitReused = "COMMIT_REUSED"
	CodeStaleCommit  = "COMMIT_STALE"
)
