// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without parsing driver error strings.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist,
// for example a creator_id that resolves to no account or a roll
// number with no student profile behind it.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a storage-level uniqueness constraint
// rejects a write, such as a duplicate username, email or roll number.
// Handlers translate this into the wire-level conflict message.
var ErrConflict = errors.New("conflict")
