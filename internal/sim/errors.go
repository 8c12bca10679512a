// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

// CodeInvalidPattern is returned when a pause pattern does not compile.
const CodeInvalidPattern = "INVALID_PAUSE_PATTERN"
