package service

import "errors"

var (
	// ErrProjectNotFound covers both absent projects and projects owned by
	// another user; the API deliberately does not distinguish them.
	ErrProjectNotFound = errors.New("project not found")

	// ErrOutputShape reports LLM output that failed to parse or validate
	// after the shape-retry budget. Orchestrators with a fallback path
	// never surface it.
	ErrOutputShape = errors.New("model output failed validation")
)
