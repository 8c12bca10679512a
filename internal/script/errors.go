// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

// Error codes for script loading.
const (
	CodeReadFailed = "SCRIPT_READ_FAILED"
	CodeSyntax     = "SCRIPT_SYNTAX"
	CodeMissingAct = "SCRIPT_MISSING_ACT"
)
