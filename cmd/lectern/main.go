// Package main wires the lectern pipeline: capture, transcription,
// summarization, and the terminal UI that drives them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lecternapp/lectern/config"
	"github.com/lecternapp/lectern/internal/clipboard"
	"github.com/lecternapp/lectern/pkg/audio"
	"github.com/lecternapp/lectern/pkg/logger"
	"github.com/lecternapp/lectern/pkg/session"
	"github.com/lecternapp/lectern/pkg/summary"
	"github.com/lecternapp/lectern/pkg/transcription"
	"github.com/lecternapp/lectern/pkg/ui"
)

func main() {
	sessionName := flag.String("name", "lecture_recording", "Base name for the summary file")
	configPath := flag.String("config", "", "Path to the config file (default ~/.lectern/config.json)")
	outputDir := flag.String("output", "", "Directory for the summary file (overrides config)")
	debugMode := flag.Bool("debug", false, "Enable verbose logging")
	flag.Parse()

	logger.Initialize()

	path := *configPath
	if path == "" {
		var err error
		path, err = config.GetConfigFilePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "lectern: locating config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lectern: loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *debugMode {
		cfg.Debug = true
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	} else {
		logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
		logger.SuppressALSAWarnings(true)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "lectern: invalid config: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, *sessionName))
}

func run(cfg *config.Config, sessionName string) int {
	logger.Info(logger.CategoryApp, "Starting lectern session %q", sessionName)

	modelPath, err := transcription.EnsureModel(cfg.WhisperModelPath, transcription.ModelSize(cfg.WhisperModelType))
	if err != nil {
		logger.Error(logger.CategoryTranscription, "Preparing whisper model: %v", err)
		fmt.Fprintf(os.Stderr, "lectern: %v\n", err)
		return 1
	}

	capture, err := audio.NewCapture(float64(cfg.AudioSampleRate), cfg.AudioChannels, cfg.AudioBufferSize, cfg.Debug)
	if err != nil {
		if errors.Is(err, audio.ErrNoInputDevice) {
			fmt.Fprintln(os.Stderr, "lectern: no audio input device found, connect a microphone and try again")
		} else {
			fmt.Fprintf(os.Stderr, "lectern: audio initialization: %v\n", err)
		}
		return 1
	}
	defer capture.Close()

	recorder := audio.NewRecorder(audio.RecorderConfig{
		SampleRate:  cfg.AudioSampleRate,
		Channels:    cfg.AudioChannels,
		MaxDuration: cfg.MaxRecordingDuration(),
		Debug:       cfg.Debug,
	}, capture)

	transcriber, err := transcription.NewExecutableTranscriber(transcription.Config{
		BinaryPath: cfg.WhisperBinaryPath,
		ModelPath:  modelPath,
		Language:   cfg.WhisperLanguage,
		Threads:    cfg.WhisperThreads,
		Debug:      cfg.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lectern: %v\n", err)
		return 1
	}

	client := summary.NewClient(cfg.OllamaHost, cfg.OllamaTimeout())
	summarizer := summary.New(client, summary.Config{
		Model:          cfg.OllamaModel,
		PromptTemplate: cfg.PromptTemplate,
		WrapWidth:      cfg.WrapWidth,
		Retries:        cfg.OllamaRetries,
	})

	runner := session.NewRunner(session.RunnerConfig{
		SessionName: sessionName,
		OutputDir:   cfg.OutputDir,
		CaptureRate: cfg.AudioSampleRate,
		TargetRate:  cfg.TargetSampleRate,
	}, recorder, transcriber, summarizer)

	program := tea.NewProgram(ui.NewModel(runner, sessionName))

	recorder.SetLevelCallback(func(level float32) {
		program.Send(ui.LevelMsg(scaleLevel(level)))
	})

	// Keep raw log lines off the alternate screen while the UI owns it.
	var logFile *os.File
	if cfg.Debug {
		if dir, err := config.GetAppDir(); err == nil {
			f, err := os.OpenFile(filepath.Join(dir, "lectern.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				logFile = f
				logger.SetOutput(f)
			}
		}
	} else {
		logger.SetOutput(io.Discard)
	}
	restoreLogs := func() {
		logger.SetOutput(os.Stderr)
		if logFile != nil {
			logFile.Close()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	results := make(chan session.Result, 1)
	go func() {
		results <- runner.Run(ctx)
		program.Send(ui.DoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		restoreLogs()
		fmt.Fprintf(os.Stderr, "lectern: terminal UI: %v\n", err)
		cancel()
		<-results
		return 1
	}
	restoreLogs()

	// The UI can exit before the pipeline does (quit during processing);
	// the session still runs to completion.
	select {
	case result := <-results:
		return report(cfg, result)
	default:
		fmt.Println("Finishing transcription and summary...")
		return report(cfg, <-results)
	}
}

// report prints the session outcome and maps it to an exit code.
func report(cfg *config.Config, result session.Result) int {
	switch {
	case result.Err == nil:
		fmt.Printf("Summary written to %s\n", result.SummaryPath)
		if cfg.CopyToClipboard {
			if !clipboard.Available() {
				logger.Warning(logger.CategoryApp, "No clipboard backend available, skipping copy")
			} else if err := clipboard.CopySummary(result.SummaryText); err != nil {
				logger.Warning(logger.CategoryApp, "Copying summary to clipboard: %v", err)
			} else {
				fmt.Println("Summary copied to clipboard.")
			}
		}
		return 0

	case errors.Is(result.Err, session.ErrCancelled):
		fmt.Println("Recording cancelled, nothing saved.")
		return 0

	case errors.Is(result.Err, transcription.ErrNoSpeech):
		fmt.Println("No speech detected in the recording, nothing to summarize.")
		return 1

	case errors.Is(result.Err, summary.ErrServiceUnavailable),
		errors.Is(result.Err, summary.ErrModelNotFound),
		errors.Is(result.Err, summary.ErrTimeout),
		errors.Is(result.Err, transcription.ErrEngineUnavailable),
		errors.Is(result.Err, transcription.ErrModelNotFound):
		fmt.Fprintf(os.Stderr, "lectern: %v\n", result.Err)
		return 1

	default:
		fmt.Fprintf(os.Stderr, "lectern: session failed: %v\n", result.Err)
		return 1
	}
}

// scaleLevel boosts raw RMS so normal speech fills the meter.
func scaleLevel(level float32) float32 {
	level *= 8
	if level > 1.0 {
		level = 1.0
	}
	return level
}
