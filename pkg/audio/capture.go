// Package audio provides microphone capture and WAV handling for a session.
package audio

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/lecternapp/lectern/pkg/logger"
)

// ErrNoInputDevice indicates that no usable audio input device was found.
var ErrNoInputDevice = errors.New("no audio input device available")

// Capture handles microphone input through PortAudio. It delivers raw sample
// frames to a callback; accumulation and duration policy live in Recorder.
type Capture struct {
	sampleRate      float64
	channels        int
	framesPerBuffer int
	debug           bool

	stream   *portaudio.Stream
	isActive bool
	onAudio  func([]float32)

	mu sync.Mutex
}

// NewCapture initializes PortAudio and verifies an input device exists.
func NewCapture(sampleRate float64, channels, framesPerBuffer int, debug bool) (*Capture, error) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if channels <= 0 {
		channels = 1
	}
	if framesPerBuffer <= 0 {
		framesPerBuffer = 1024
	}

	if err := portaudio.Initialize(); err != nil {
		if strings.Contains(err.Error(), "ALSA") {
			logger.Warning(logger.CategoryAudio, "ALSA error during init; check 'arecord -l' and audio group membership")
		}
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	c := &Capture{
		sampleRate:      sampleRate,
		channels:        channels,
		framesPerBuffer: framesPerBuffer,
		debug:           debug,
	}

	// Fail early with a distinct error when there is nothing to record from.
	hostAPI, err := portaudio.DefaultHostApi()
	if err != nil || hostAPI.DefaultInputDevice == nil {
		portaudio.Terminate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
		}
		return nil, ErrNoInputDevice
	}

	if debug {
		logger.Info(logger.CategoryAudio, "Audio system initialized: %s", portaudio.VersionText())
		logger.Info(logger.CategoryAudio, "Default input device: %s", hostAPI.DefaultInputDevice.Name)
		if devices, err := portaudio.Devices(); err == nil {
			for i, dev := range devices {
				logger.Debug(logger.CategoryAudio, "[%d] %s (in: %v, out: %v)",
					i, dev.Name, dev.MaxInputChannels > 0, dev.MaxOutputChannels > 0)
			}
		}
	}

	return c, nil
}

// Start begins audio capture, calling the provided callback with audio data.
func (c *Capture) Start(callback func([]float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isActive {
		return fmt.Errorf("audio capture already active")
	}

	c.onAudio = callback

	stream, err := portaudio.OpenDefaultStream(
		c.channels,
		0, // no output channels
		c.sampleRate,
		c.framesPerBuffer,
		c.processAudio,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to open audio stream: %v", ErrNoInputDevice, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	c.stream = stream
	c.isActive = true

	if c.debug {
		logger.Info(logger.CategoryAudio, "Audio capture started (%.0f Hz, %d ch)", c.sampleRate, c.channels)
	}

	return nil
}

// Stop ends audio capture and releases the stream.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isActive || c.stream == nil {
		return nil
	}

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop audio stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("failed to close audio stream: %w", err)
	}

	c.stream = nil
	c.isActive = false

	if c.debug {
		logger.Info(logger.CategoryAudio, "Audio capture stopped")
	}

	return nil
}

// Close stops any active stream and releases PortAudio.
func (c *Capture) Close() error {
	c.Stop()
	return portaudio.Terminate()
}

// IsActive returns whether audio capture is currently active.
func (c *Capture) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isActive
}

func (c *Capture) processAudio(input, _ []float32) {
	if c.onAudio == nil {
		return
	}

	// Copy before handing off; PortAudio reuses the input slice.
	audioData := make([]float32, len(input))
	copy(audioData, input)

	c.onAudio(audioData)
}
