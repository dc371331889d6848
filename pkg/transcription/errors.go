// Package transcription invokes a local whisper.cpp executable on recorded audio.
package transcription

import (
	"errors"
)

// Common error types for the transcription package
var (
	// ErrEngineUnavailable indicates the whisper executable could not be found or run
	ErrEngineUnavailable = errors.New("whisper executable not available")

	// ErrModelNotFound indicates the requested ggml model file does not exist
	ErrModelNotFound = errors.New("whisper model not found")

	// ErrModelDownloadFailed indicates that downloading the model failed
	ErrModelDownloadFailed = errors.New("failed to download whisper model")

	// ErrTranscriptionFailed indicates that the transcription process failed
	ErrTranscriptionFailed = errors.New("transcription process failed")

	// ErrNoSpeech indicates the engine produced no usable speech content.
	// This is reported distinctly from a failure: the audio was valid but
	// silent, so there is nothing to summarize.
	ErrNoSpeech = errors.New("no speech detected in recording")
)
