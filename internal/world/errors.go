// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

// Error codes for world failures.
const (
	CodeInvalidDirection = "INVALID_DIRECTION"
	CodeInvalidGrid      = "INVALID_GRID"
	CodeInvalidPosition  = "INVALID_POSITION"
	CodeInvalidEntity    = "INVALID_ENTITY"
	CodeInvalidComponent = "INVALID_COMPONENT"
	CodeDuplicateEntity  = "DUPLICATE_ENTITY"
	CodeEntityNotFound   = "ENTITY_NOT_FOUND"
)
