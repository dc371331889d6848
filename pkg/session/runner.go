package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lecternapp/lectern/pkg/audio"
	"github.com/lecternapp/lectern/pkg/logger"
	"github.com/lecternapp/lectern/pkg/summary"
	"github.com/lecternapp/lectern/pkg/transcription"
)

// Recorder is the capture surface the runner drives.
type Recorder interface {
	Start() error
	Stop() ([]float32, time.Duration, error)
	Cancel() error
	Ceiling() <-chan struct{}
}

// Transcriber converts a WAV file into cleaned transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Summarizer condenses a transcript into the final summary text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// RunnerConfig carries the per-session settings the runner needs.
type RunnerConfig struct {
	SessionName string
	OutputDir   string
	CaptureRate int
	TargetRate  int
}

// Runner executes one session lifecycle. Control arrives as toggle and quit
// signals over an internal channel; the terminal UI is the only sender.
type Runner struct {
	cfg         RunnerConfig
	recorder    Recorder
	transcriber Transcriber
	summarizer  Summarizer

	mu    sync.RWMutex
	state State

	actions chan action

	audioPath      string
	transcriptPath string
}

// NewRunner wires a runner from its pipeline components.
func NewRunner(cfg RunnerConfig, rec Recorder, tr Transcriber, sum Summarizer) *Runner {
	if cfg.SessionName == "" {
		cfg.SessionName = "lecture_recording"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.TargetRate <= 0 {
		cfg.TargetRate = 16000
	}
	if cfg.CaptureRate <= 0 {
		cfg.CaptureRate = cfg.TargetRate
	}

	return &Runner{
		cfg:         cfg,
		recorder:    rec,
		transcriber: tr,
		summarizer:  sum,
		state:       StateIdle,
		actions:     make(chan action, 2),
	}
}

// State returns a snapshot of the current session state.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Toggle requests a start when idle or a stop when recording. It reports
// whether the signal was accepted.
func (r *Runner) Toggle() bool {
	state := r.State()
	if state != StateIdle && state != StateRecording {
		return false
	}
	select {
	case r.actions <- actionToggle:
		return true
	default:
		return false
	}
}

// Quit requests session teardown. While recording this cancels; while
// processing the pipeline runs to completion first.
func (r *Runner) Quit() {
	select {
	case r.actions <- actionQuit:
	default:
	}
}

func (r *Runner) transition(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := Transition(r.state, event)
	if err != nil {
		return err
	}
	r.state = next
	return nil
}

// Run drives one session from idle to a terminal state and returns the
// outcome. Intermediate artifacts are removed on every exit path; only the
// summary file survives a successful run.
func (r *Runner) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}
	defer func() {
		result.FinishedAt = time.Now()
	}()

	// Idle: wait for the start signal.
	select {
	case <-ctx.Done():
		result.State = r.State()
		result.Cancelled = true
		result.Err = ErrCancelled
		return result
	case a := <-r.actions:
		if a == actionQuit {
			result.State = r.State()
			result.Cancelled = true
			result.Err = ErrCancelled
			return result
		}
	}

	if err := r.transition(EventStart); err != nil {
		result.State = r.State()
		result.Err = err
		return result
	}
	if err := r.recorder.Start(); err != nil {
		r.fail()
		result.State = r.State()
		result.Err = fmt.Errorf("starting capture: %w", err)
		return result
	}
	logger.Info(logger.CategorySession, "recording started: %s", r.cfg.SessionName)

	// Recording: wait for stop, cancel, or the duration ceiling.
	autoStopped := false
	select {
	case <-ctx.Done():
		return r.cancel(result)
	case <-r.recorder.Ceiling():
		logger.Info(logger.CategorySession, "maximum recording duration reached, stopping automatically")
		autoStopped = true
	case a := <-r.actions:
		if a == actionQuit {
			return r.cancel(result)
		}
	}
	result.AutoStopped = autoStopped

	if err := r.transition(EventStop); err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}

	samples, elapsed, err := r.recorder.Stop()
	if err != nil {
		r.fail()
		result.State = r.State()
		result.Err = fmt.Errorf("stopping capture: %w", err)
		return result
	}
	result.Recorded = elapsed
	logger.Info(logger.CategorySession, "recording stopped after %s (%d samples)", elapsed.Round(time.Second), len(samples))

	defer r.cleanup()

	if err := r.saveAudio(samples); err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}

	if err := r.transition(EventTranscribe); err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}

	transcript, err := r.transcriber.Transcribe(ctx, r.audioPath)
	r.transcriptPath = transcription.TranscriptPath(r.audioPath)
	if err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}
	logger.Info(logger.CategorySession, "transcription complete (%d chars)", len(transcript))

	if err := r.transition(EventSummarize); err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}

	text, err := r.summarizer.Summarize(ctx, transcript)
	if err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}

	path, err := summary.WriteSummary(r.cfg.OutputDir, r.cfg.SessionName, text)
	if err != nil {
		r.fail()
		result.State = r.State()
		result.Err = fmt.Errorf("writing summary: %w", err)
		return result
	}

	if err := r.transition(EventComplete); err != nil {
		r.fail()
		result.State = r.State()
		result.Err = err
		return result
	}

	logger.Info(logger.CategorySession, "summary written to %s", path)
	result.State = r.State()
	result.SummaryPath = path
	result.SummaryText = text
	return result
}

// cancel discards the in-flight recording and leaves nothing behind.
func (r *Runner) cancel(result Result) Result {
	if err := r.recorder.Cancel(); err != nil {
		logger.Warning(logger.CategorySession, "discarding recording: %v", err)
	}
	_ = r.transition(EventCancel)
	logger.Info(logger.CategorySession, "recording cancelled, no artifacts kept")
	result.State = r.State()
	result.Cancelled = true
	result.Err = ErrCancelled
	return result
}

// saveAudio resamples the captured buffer to the engine rate and writes it
// to a temporary WAV file.
func (r *Runner) saveAudio(samples []float32) error {
	resampled := audio.Resample(samples, r.cfg.CaptureRate, r.cfg.TargetRate)

	f, err := os.CreateTemp("", r.cfg.SessionName+"_*.wav")
	if err != nil {
		return fmt.Errorf("creating temp audio file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := audio.SaveToWav(resampled, r.cfg.TargetRate, path); err != nil {
		os.Remove(path)
		return fmt.Errorf("saving audio: %w", err)
	}
	r.audioPath = path
	logger.Debug(logger.CategorySession, "audio saved to %s", path)
	return nil
}

func (r *Runner) fail() {
	_ = r.transition(EventFail)
}

// cleanup removes the transcript first, then the audio file. Failures to
// delete are logged and otherwise ignored.
func (r *Runner) cleanup() {
	for _, path := range []string{r.transcriptPath, r.audioPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warning(logger.CategorySession, "could not remove %s: %v", path, err)
		}
	}
	r.transcriptPath = ""
	r.audioPath = ""
}
