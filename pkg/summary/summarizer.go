package summary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lecternapp/lectern/pkg/logger"
)

// Generator produces text from a (model, prompt) pair. *Client is the
// production implementation.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Config for the summarizer.
type Config struct {
	Model          string
	PromptTemplate string // empty uses DefaultPromptTemplate
	WrapWidth      int
	// Retries is the number of extra attempts made when the service is
	// unreachable. Other failures are never retried.
	Retries      int
	RetryBackoff time.Duration
}

// Summarizer sends a transcript through the inference service and persists
// the wrapped result.
type Summarizer struct {
	gen Generator
	cfg Config
}

// New creates a summarizer using the given generator.
func New(gen Generator, cfg Config) *Summarizer {
	if cfg.WrapWidth <= 0 {
		cfg.WrapWidth = 80
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	return &Summarizer{gen: gen, cfg: cfg}
}

// Summarize generates the summary text for a transcript. Only
// ErrServiceUnavailable is retried, a bounded number of times, so a service
// that is simply not started yet gets one more chance before the user is
// told to launch it.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt := BuildPrompt(s.cfg.PromptTemplate, transcript)

	logger.Info(logger.CategorySummary, "Generating summary with model %s", s.cfg.Model)

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			logger.Warning(logger.CategorySummary, "Inference service unreachable, retrying (%d/%d)...",
				attempt, s.cfg.Retries)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.cfg.RetryBackoff):
			}
		}

		text, err := s.gen.Generate(ctx, s.cfg.Model, prompt)
		if err == nil {
			return WrapText(text, s.cfg.WrapWidth), nil
		}

		lastErr = err
		if !errors.Is(err, ErrServiceUnavailable) {
			return "", err
		}
	}

	return "", lastErr
}

// SummaryPath returns the deterministic output path for a session name.
func SummaryPath(outputDir, sessionName string) string {
	return filepath.Join(outputDir, sessionName+"_summary.txt")
}

// WriteSummary persists the summary document atomically: the text is written
// to a temp file in the output directory and renamed into place, so a failed
// or interrupted write never leaves a partial summary file.
func WriteSummary(outputDir, sessionName, text string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	finalPath := SummaryPath(outputDir, sessionName)

	tmp, err := os.CreateTemp(outputDir, sessionName+"_summary_*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close summary file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to finalize summary file: %w", err)
	}

	logger.Info(logger.CategorySummary, "Summary saved to %s", finalPath)
	return finalPath, nil
}
