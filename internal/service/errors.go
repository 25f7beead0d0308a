// Package service implements the account provisioner and the result
// ingestion pipeline on top of small storage interfaces, keeping both
// testable without a live database.
package service

// Kind classifies an operation failure so the boundary layer can decide how
// to render it. Per the existing wire convention every kind below maps to an
// HTTP 200 response carrying {"status":"error","message":...}; the kinds
// still matter for tests and for any future client that wants real codes.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing required input
	KindPermission             // role-hierarchy rule violation
	KindConflict               // uniqueness violation
	KindNotFound               // referenced entity absent
	KindInternal               // storage or hashing failure
)

// Error is a classified, human-readable operation failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func failf(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }
