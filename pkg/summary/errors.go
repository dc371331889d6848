// Package summary turns a transcript into a structured summary document via a
// locally hosted Ollama inference service.
package summary

import "errors"

var (
	// ErrServiceUnavailable indicates the inference service could not be
	// reached, typically because ollama is not running.
	ErrServiceUnavailable = errors.New("inference service unavailable (is ollama running? try 'ollama serve')")

	// ErrModelNotFound indicates the requested model has not been pulled
	// into the inference service.
	ErrModelNotFound = errors.New("inference model not found (try 'ollama pull <model>')")

	// ErrTimeout indicates the generation request exceeded its deadline.
	ErrTimeout = errors.New("summarization request timed out")
)
