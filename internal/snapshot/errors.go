// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package snapshot

// Error codes for snapshot failures.
const (
	CodeInvalidDocument    = "INVALID_SNAPSHOT"
	CodeSchemaViolation    = "SNAPSHOT_SCHEMA_VIOLATION"
	CodeUnsupportedVersion = "UNSUPPORTED_SNAPSHOT_VERSION"
	CodeUnknownFormat      = "UNKNOWN_SNAPSHOT_FORMAT"
	CodeIO                 = "SNAPSHOT_IO"
)
