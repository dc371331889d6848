package audio

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/lecternapp/lectern/pkg/logger"
)

// SaveToWav writes float32 samples as a mono 16-bit PCM WAV file.
func SaveToWav(samples []float32, sampleRate int, outputPath string) error {
	logger.Debug(logger.CategoryAudio, "Saving audio to WAV file: %s", outputPath)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(samples) < 1000 {
		logger.Warning(logger.CategoryAudio, "Very small audio sample size: %d samples", len(samples))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		// Clamp float32 [-1.0, 1.0] into int16 range
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * 32767.0)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return nil
}

// LoadFromWav reads a WAV file back into normalized float32 samples and
// returns the file's sample rate. Stereo files are averaged down to mono.
func LoadFromWav(filePath string) ([]float32, int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid WAV file: %s", filePath)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read PCM data: %w", err)
	}

	sampleRate := buf.Format.SampleRate
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("WAV file reports %d channels", channels)
	}

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / 32768.0
		}
		samples[i] = sum / float32(channels)
	}

	logger.Debug(logger.CategoryAudio, "Loaded WAV: %d samples, %d Hz, %d ch",
		frames, sampleRate, channels)
	return samples, sampleRate, nil
}
