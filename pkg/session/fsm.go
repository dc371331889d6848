package session

import "fmt"

// State identifies where a session is in its lifecycle.
type State string

// Event drives a session from one state to the next.
type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateStopped      State = "stopped"
	StateTranscribing State = "transcribing"
	StateSummarizing  State = "summarizing"
	StateDone         State = "done"
	StateCancelled    State = "cancelled"
	StateError        State = "error"
)

const (
	EventStart      Event = "start"
	EventStop       Event = "stop"
	EventCancel     Event = "cancel"
	EventTranscribe Event = "transcribe"
	EventSummarize  Event = "summarize"
	EventComplete   Event = "complete"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

// Transition returns the state reached by applying event to current.
// Failures are reachable from every active state; cancellation only
// while recording.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		if current == StateIdle {
			return current, invalidTransition(current, event)
		}
		return StateError, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventStop:
			return StateStopped, nil
		case EventCancel:
			return StateCancelled, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped:
		switch event {
		case EventTranscribe:
			return StateTranscribing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventSummarize:
			return StateSummarizing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSummarizing:
		switch event {
		case EventComplete:
			return StateDone, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDone, StateCancelled, StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether the session has finished, successfully or not.
func Terminal(s State) bool {
	return s == StateDone || s == StateCancelled || s == StateError
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
