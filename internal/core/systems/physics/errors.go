package physics

import "errors"

var (
	ErrUnknownKind   = errors.New("unknown shape kind")
	ErrKindMismatch  = errors.New("shape kind mismatch")
	ErrInvalidConfig = errors.New("invalid swept volume configuration")
)
