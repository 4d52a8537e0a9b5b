package table

import "errors"

var (
	// ErrColumnNotFound indicates a referenced column is not in the frame.
	ErrColumnNotFound = errors.New("table: column not found")
	// ErrLengthMismatch indicates series of different lengths were combined.
	ErrLengthMismatch = errors.New("table: series length mismatch")
	// ErrDuplicateColumn indicates two series share a name in one frame.
	ErrDuplicateColumn = errors.New("table: duplicate column name")
	// ErrKind indicates a series of the wrong kind was passed to an expression.
	ErrKind = errors.New("table: unexpected series kind")
)
