package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeStubEngine creates a shell script standing in for whisper-cli. The
// script mirrors the -otxt contract: it writes its transcript next to the
// input audio file.
func writeStubEngine(t *testing.T, dir, transcript string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub engine scripts need a POSIX shell")
	}

	script := `#!/bin/sh
# find the -f argument
audio=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-f" ]; then
    audio="$2"
    shift
  fi
  shift
done
`
	if transcript != "" {
		script += `printf '%s' "` + transcript + `" > "$audio.txt"
`
	}
	if exitCode != 0 {
		script += "echo 'engine blew up' >&2\n"
	}
	script += "exit " + strconv.Itoa(exitCode) + "\n"

	path := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func writeModelFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ggml-base.en.bin")
	require.NoError(t, os.WriteFile(path, []byte("model"), 0644))
	return path
}

func writeAudioFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "lecture.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))
	return path
}

func TestNewExecutableTranscriberMissingBinary(t *testing.T) {
	dir := t.TempDir()
	model := writeModelFile(t, dir)

	_, err := NewExecutableTranscriber(Config{
		BinaryPath: filepath.Join(dir, "does-not-exist"),
		ModelPath:  model,
	})
	require.ErrorIs(t, err, ErrEngineUnavailable)

	_, err = NewExecutableTranscriber(Config{
		BinaryPath: "definitely-not-a-real-binary-name",
		ModelPath:  model,
	})
	require.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestNewExecutableTranscriberMissingModel(t *testing.T) {
	dir := t.TempDir()
	engine := writeStubEngine(t, dir, "hello", 0)

	_, err := NewExecutableTranscriber(Config{
		BinaryPath: engine,
		ModelPath:  filepath.Join(dir, "missing-model.bin"),
	})
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestBuildArgs(t *testing.T) {
	tr := &ExecutableTranscriber{config: Config{
		BinaryPath: "whisper-cli",
		ModelPath:  "/models/ggml-base.en.bin",
		Language:   "en",
		Threads:    8,
	}}

	args := tr.buildArgs("/tmp/audio.wav")
	require.Equal(t, []string{
		"-m", "/models/ggml-base.en.bin",
		"-f", "/tmp/audio.wav",
		"-t", "8",
		"-nt",
		"-otxt",
		"-l", "en",
	}, args)
}

func TestTranscribeSuccess(t *testing.T) {
	dir := t.TempDir()
	engine := writeStubEngine(t, dir, "hello from the lecture hall", 0)
	model := writeModelFile(t, dir)
	audio := writeAudioFile(t, dir)

	tr, err := NewExecutableTranscriber(Config{BinaryPath: engine, ModelPath: model, Threads: 2})
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	require.Equal(t, "Hello from the lecture hall", text)

	// The transcript file is left for the session to clean up
	_, err = os.Stat(TranscriptPath(audio))
	require.NoError(t, err)
}

func TestTranscribeEngineFailure(t *testing.T) {
	dir := t.TempDir()
	engine := writeStubEngine(t, dir, "", 1)
	model := writeModelFile(t, dir)
	audio := writeAudioFile(t, dir)

	tr, err := NewExecutableTranscriber(Config{BinaryPath: engine, ModelPath: model})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), audio)
	require.ErrorIs(t, err, ErrTranscriptionFailed)
	require.Contains(t, err.Error(), "engine blew up")
}

func TestTranscribeNoTranscriptProducedIsNoSpeech(t *testing.T) {
	dir := t.TempDir()
	engine := writeStubEngine(t, dir, "", 0)
	model := writeModelFile(t, dir)
	audio := writeAudioFile(t, dir)

	tr, err := NewExecutableTranscriber(Config{BinaryPath: engine, ModelPath: model})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), audio)
	require.ErrorIs(t, err, ErrNoSpeech)
}

func TestTranscribeBlankAudioMarkerIsNoSpeech(t *testing.T) {
	dir := t.TempDir()
	engine := writeStubEngine(t, dir, "[BLANK_AUDIO]", 0)
	model := writeModelFile(t, dir)
	audio := writeAudioFile(t, dir)

	tr, err := NewExecutableTranscriber(Config{BinaryPath: engine, ModelPath: model})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), audio)
	require.ErrorIs(t, err, ErrNoSpeech)
}

func TestTranscribeMissingAudioFile(t *testing.T) {
	dir := t.TempDir()
	engine := writeStubEngine(t, dir, "text", 0)
	model := writeModelFile(t, dir)

	tr, err := NewExecutableTranscriber(Config{BinaryPath: engine, ModelPath: model})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), filepath.Join(dir, "nope.wav"))
	require.ErrorIs(t, err, ErrTranscriptionFailed)
}

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text capitalized", "hello world", "Hello world"},
		{"blank audio marker stripped", "[BLANK_AUDIO]", ""},
		{"silence marker stripped", "(silence)", ""},
		{"markers inside text", "so [MUSIC] the theorem holds", "So the theorem holds"},
		{"whitespace collapsed", "one    two\n\nthree", "One two three"},
		{"punctuation spacing fixed", "hello , world .", "Hello, world."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeTranscript(tc.in))
		})
	}
}

func TestResolveModelFile(t *testing.T) {
	path, err := ResolveModelFile("/models", ModelBase)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/models", "base.en.bin"), path)

	_, err = ResolveModelFile("/models", ModelSize("colossal"))
	require.Error(t, err)
}

func TestErrorsAreDistinct(t *testing.T) {
	require.False(t, errors.Is(ErrNoSpeech, ErrTranscriptionFailed))
	require.False(t, errors.Is(ErrEngineUnavailable, ErrModelNotFound))
}
