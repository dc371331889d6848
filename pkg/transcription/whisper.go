package transcription

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lecternapp/lectern/pkg/logger"
)

// Transcriber converts an audio file into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Config for the whisper executable transcriber.
type Config struct {
	// BinaryPath is the whisper-cli executable, either absolute or on PATH
	BinaryPath string
	// ModelPath is the full path to a ggml model file
	ModelPath string
	Language  string
	Threads   int
	Debug     bool
}

// ExecutableTranscriber runs whisper.cpp's whisper-cli as a subprocess. The
// -otxt flag makes whisper write the transcript next to the input file, which
// is the interface this transcriber consumes.
type ExecutableTranscriber struct {
	config Config
}

// NewExecutableTranscriber validates the engine and model up front so missing
// dependencies fail fast rather than mid-session.
func NewExecutableTranscriber(cfg Config) (*ExecutableTranscriber, error) {
	if cfg.BinaryPath == "" {
		return nil, fmt.Errorf("%w: no executable path configured", ErrEngineUnavailable)
	}

	if strings.ContainsRune(cfg.BinaryPath, os.PathSeparator) {
		if _, err := os.Stat(cfg.BinaryPath); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, cfg.BinaryPath)
		}
	} else if _, err := exec.LookPath(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("%w: %s not found on PATH", ErrEngineUnavailable, cfg.BinaryPath)
	}

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelNotFound)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}

	return &ExecutableTranscriber{config: cfg}, nil
}

// TranscriptPath returns where whisper-cli writes the transcript for a given
// audio file when invoked with -otxt.
func TranscriptPath(audioPath string) string {
	return audioPath + ".txt"
}

// Transcribe runs the engine on audioPath and returns the normalized
// transcript text. The transcript file is left in place; the caller owns its
// cleanup. Silent or degenerate output yields ErrNoSpeech.
func (t *ExecutableTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("%w: audio file missing: %v", ErrTranscriptionFailed, err)
	}

	args := t.buildArgs(audioPath)
	logger.Info(logger.CategoryTranscription, "Transcribing audio with whisper.cpp: %s", audioPath)
	if t.config.Debug {
		logger.Debug(logger.CategoryTranscription, "Executing: %s %s", t.config.BinaryPath, strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, t.config.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("%w: %v\nstderr: %s", ErrTranscriptionFailed, err, stderrStr)
		}
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	if t.config.Debug && stderr.Len() > 0 {
		// whisper.cpp reports progress on stderr
		logger.Debug(logger.CategoryTranscription, "whisper stderr: %s", strings.TrimSpace(stderr.String()))
	}

	transcriptPath := TranscriptPath(audioPath)
	raw, err := os.ReadFile(transcriptPath)
	if err != nil {
		// whisper exits zero but writes nothing when the audio is silent
		// or too short
		return "", fmt.Errorf("%w: no transcript produced", ErrNoSpeech)
	}

	transcript := NormalizeTranscript(string(raw))
	if transcript == "" {
		return "", ErrNoSpeech
	}

	logger.Info(logger.CategoryTranscription, "Transcription complete: %d characters", len(transcript))
	return transcript, nil
}

// buildArgs assembles the whisper-cli command line:
// -m model, -f input, -l language, -t threads, -nt (no timestamps),
// -otxt (write transcript to <input>.txt).
func (t *ExecutableTranscriber) buildArgs(audioPath string) []string {
	args := []string{
		"-m", t.config.ModelPath,
		"-f", audioPath,
		"-t", strconv.Itoa(t.config.Threads),
		"-nt",
		"-otxt",
	}
	if t.config.Language != "" {
		args = append(args, "-l", t.config.Language)
	}
	return args
}
