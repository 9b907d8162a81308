package contract

import "errors"

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrRetriesExhausted = errors.New("agent retries exhausted")
	ErrPromptMissing    = errors.New("required prompt is missing")
	ErrValidation       = errors.New("validation failed")
	ErrToolCall         = errors.New("tool call failed")
)
