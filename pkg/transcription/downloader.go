package transcription

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lecternapp/lectern/pkg/logger"
)

// ModelSize represents the whisper model variant to use
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

const (
	// WhisperBaseURL is the base URL for ggml whisper models
	WhisperBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-"
)

// WhisperModelFilenames maps model size to filename
var WhisperModelFilenames = map[ModelSize]string{
	ModelTiny:   "tiny.en.bin",
	ModelBase:   "base.en.bin",
	ModelSmall:  "small.en.bin",
	ModelMedium: "medium.en.bin",
	ModelLarge:  "large-v3.bin",
}

// ResolveModelFile returns the path of the model file for a size inside
// modelDir, without checking for existence.
func ResolveModelFile(modelDir string, size ModelSize) (string, error) {
	filename, ok := WhisperModelFilenames[size]
	if !ok {
		return "", fmt.Errorf("unknown model size: %s", size)
	}
	return filepath.Join(modelDir, filename), nil
}

// EnsureModel returns the path to the model file for the given size,
// downloading it from HuggingFace first when it is not present.
func EnsureModel(modelDir string, size ModelSize) (string, error) {
	modelFile, err := ResolveModelFile(modelDir, size)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(modelFile); err == nil {
		logger.Info(logger.CategoryTranscription, "Using existing model file: %s", modelFile)
		return modelFile, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("error checking model file: %w", err)
	}

	logger.Info(logger.CategoryTranscription, "Model file %s not found. Downloading...", modelFile)

	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	if err := downloadModelFile(modelFile, WhisperModelFilenames[size]); err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelDownloadFailed, err)
	}

	logger.Info(logger.CategoryTranscription, "Model downloaded successfully: %s", modelFile)
	return modelFile, nil
}

// downloadModelFile downloads a whisper model file from HuggingFace
func downloadModelFile(outputPath, modelFilename string) error {
	url := WhisperBaseURL + modelFilename

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download model: HTTP %s", resp.Status)
	}

	if resp.ContentLength > 0 {
		logger.Info(logger.CategoryTranscription, "Downloading model (%d MB). This may take a while...",
			resp.ContentLength/(1024*1024))
	} else {
		logger.Info(logger.CategoryTranscription, "Downloading model. Size unknown. This may take a while...")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var downloaded, lastReported int64
	reader := io.TeeReader(resp.Body, &progressWriter{
		total:        resp.ContentLength,
		downloaded:   &downloaded,
		lastReported: &lastReported,
	})

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(outputPath) // don't leave a truncated model behind
		return err
	}

	return nil
}

// progressWriter tracks download progress
type progressWriter struct {
	total        int64
	downloaded   *int64
	lastReported *int64
}

// Write updates progress and logs it every 10MB
func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	if pw.total > 0 && (*pw.downloaded-*pw.lastReported > 10*1024*1024 || *pw.downloaded == pw.total) {
		percentage := float64(*pw.downloaded) / float64(pw.total) * 100
		logger.Info(logger.CategoryTranscription, "Downloaded %.1f MB of %.1f MB (%.1f%%)",
			float64(*pw.downloaded)/1024/1024, float64(pw.total)/1024/1024, percentage)
		*pw.lastReported = *pw.downloaded
	}

	return n, nil
}
