package audio

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/lecternapp/lectern/pkg/logger"
)

// Source is the capture device the recorder pulls frames from. *Capture is
// the production implementation; tests substitute an in-memory source.
type Source interface {
	Start(callback func([]float32)) error
	Stop() error
}

// RecorderConfig bounds one recording.
type RecorderConfig struct {
	SampleRate  int
	Channels    int
	MaxDuration time.Duration
	Debug       bool
}

// Recorder accumulates captured samples for a single recording, enforcing the
// maximum-duration ceiling. The ceiling channel is closed exactly once when
// the cap is reached so the session can auto-stop without polling.
type Recorder struct {
	cfg    RecorderConfig
	source Source

	mu         sync.Mutex
	samples    []float32
	recording  bool
	startedAt  time.Time
	maxSamples int
	ceilingHit bool

	ceiling chan struct{}
	onLevel func(float32)
}

// NewRecorder creates a recorder around the given capture source.
func NewRecorder(cfg RecorderConfig, source Source) *Recorder {
	maxSamples := int(cfg.MaxDuration.Seconds() * float64(cfg.SampleRate) * float64(cfg.Channels))
	return &Recorder{
		cfg:        cfg,
		source:     source,
		maxSamples: maxSamples,
		ceiling:    make(chan struct{}),
	}
}

// SetLevelCallback registers a consumer for per-buffer RMS levels. Must be
// called before Start.
func (r *Recorder) SetLevelCallback(cb func(float32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLevel = cb
}

// Ceiling is closed when the maximum recording duration has been reached.
func (r *Recorder) Ceiling() <-chan struct{} {
	return r.ceiling
}

// Start begins accumulating audio from the source.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return errors.New("recorder is already running")
	}
	r.samples = r.samples[:0]
	r.recording = true
	r.ceilingHit = false
	r.startedAt = time.Now()
	r.mu.Unlock()

	if err := r.source.Start(r.absorb); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return err
	}

	logger.Info(logger.CategoryAudio, "Recording started (max %s)", r.cfg.MaxDuration)
	return nil
}

// Stop ends the recording and returns the accumulated buffer along with the
// elapsed recording time.
func (r *Recorder) Stop() ([]float32, time.Duration, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, 0, errors.New("recorder is not running")
	}
	r.recording = false
	elapsed := time.Since(r.startedAt)
	r.mu.Unlock()

	if err := r.source.Stop(); err != nil {
		return nil, elapsed, err
	}

	r.mu.Lock()
	buf := make([]float32, len(r.samples))
	copy(buf, r.samples)
	r.samples = nil
	if r.ceilingHit {
		elapsed = r.cfg.MaxDuration
	}
	r.mu.Unlock()

	logger.Info(logger.CategoryAudio, "Recording stopped: %d samples (%.1fs)",
		len(buf), float64(len(buf))/float64(r.cfg.SampleRate*r.cfg.Channels))
	return buf, elapsed, nil
}

// Cancel stops the source and discards everything captured so far.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	wasRecording := r.recording
	r.recording = false
	r.samples = nil
	r.mu.Unlock()

	if !wasRecording {
		return nil
	}

	logger.Info(logger.CategoryAudio, "Recording cancelled, partial buffer discarded")
	return r.source.Stop()
}

// Elapsed reports how long the current recording has been running.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return 0
	}
	return time.Since(r.startedAt)
}

// IsRecording reports whether a recording is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// absorb is the capture callback. Frames past the ceiling are truncated so
// the emitted buffer never exceeds the configured maximum duration.
func (r *Recorder) absorb(in []float32) {
	if len(in) == 0 {
		return
	}

	// Silence out corrupt samples rather than poisoning the buffer.
	for i, s := range in {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			in[i] = 0
		}
	}

	var level func(float32)
	var rms float32

	r.mu.Lock()
	if !r.recording || r.ceilingHit {
		r.mu.Unlock()
		return
	}

	room := r.maxSamples - len(r.samples)
	if room <= 0 {
		r.ceilingHit = true
		r.mu.Unlock()
		close(r.ceiling)
		return
	}
	if len(in) > room {
		in = in[:room]
	}
	r.samples = append(r.samples, in...)

	hitCeiling := len(r.samples) >= r.maxSamples
	if hitCeiling {
		r.ceilingHit = true
	}
	level = r.onLevel
	r.mu.Unlock()

	if level != nil {
		rms = CalculateRMSLevel(in)
		level(rms)
	}
	if hitCeiling {
		logger.Warning(logger.CategoryAudio, "Maximum recording time of %s reached, stopping automatically", r.cfg.MaxDuration)
		close(r.ceiling)
	}
}
