package collision

import "errors"

var (
	ErrKindMismatch = errors.New("shape kind does not match object kind")
	ErrInvalidTopic = errors.New("event topic must not be empty when publishing is enabled")
)
