package audio

import (
	"math"

	"github.com/lecternapp/lectern/pkg/logger"
)

// Resample converts samples from one sample rate to another using linear
// interpolation. Whisper expects 16 kHz input, so the 44.1 kHz capture is
// resampled before it is written to disk.
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(toRate) / float64(fromRate)
	newLength := int(float64(len(samples)) * ratio)
	resampled := make([]float32, newLength)

	for i := 0; i < newLength; i++ {
		pos := float64(i) / ratio
		index := int(pos)
		if index >= len(samples)-1 {
			resampled[i] = samples[len(samples)-1]
			continue
		}

		weight := float32(pos - float64(index))
		resampled[i] = (1.0-weight)*samples[index] + weight*samples[index+1]
	}

	logger.Debug(logger.CategoryAudio, "Resampled audio from %d Hz to %d Hz (%d -> %d samples)",
		fromRate, toRate, len(samples), len(resampled))

	return resampled
}

// CalculateRMSLevel computes the Root Mean Square level of an audio buffer,
// a reasonable approximation of perceived volume.
func CalculateRMSLevel(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}

	var sumSquares float64
	for _, sample := range buffer {
		sumSquares += float64(sample * sample)
	}

	return float32(math.Sqrt(sumSquares / float64(len(buffer))))
}
