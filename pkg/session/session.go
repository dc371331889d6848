// Package session owns the lifecycle of one recording session, from the
// first start signal through transcription and summarization to cleanup.
package session

import (
	"errors"
	"time"
)

// ErrCancelled marks a session the user abandoned while recording. It is a
// normal early exit, not a failure.
var ErrCancelled = errors.New("session cancelled")

type action int

const (
	actionToggle action = iota + 1
	actionQuit
)

// Result is the complete outcome of one Run invocation.
type Result struct {
	State       State
	SummaryPath string
	SummaryText string
	Cancelled   bool
	AutoStopped bool
	Recorded    time.Duration
	StartedAt   time.Time
	FinishedAt  time.Time
	Err         error
}
