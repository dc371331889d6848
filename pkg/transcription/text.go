package transcription

import (
	"regexp"
	"strings"
)

var (
	// Engine noise markers like [BLANK_AUDIO], [MUSIC], (silence)
	bracketMarkerPattern = regexp.MustCompile(`\[(?i:BLANK_AUDIO|MUSIC|APPLAUSE|LAUGHTER|INAUDIBLE|NOISE|CROSSTALK|SILENCE)\]`)
	parenMarkerPattern   = regexp.MustCompile(`\((?i:[^)]*(?:music|noise|applause|laughter|silence)[^)]*)\)`)
	spacePattern         = regexp.MustCompile(`\s+`)
)

// NormalizeTranscript cleans raw whisper output: noise markers are stripped,
// whitespace is collapsed, and spacing around punctuation is repaired. A
// transcript consisting only of markers normalizes to the empty string, which
// callers treat as the no-speech condition.
func NormalizeTranscript(text string) string {
	if text == "" {
		return ""
	}

	text = bracketMarkerPattern.ReplaceAllString(text, "")
	text = parenMarkerPattern.ReplaceAllString(text, "")

	text = spacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " ?", "?")
	text = strings.ReplaceAll(text, " !", "!")

	if len(text) > 0 {
		text = strings.ToUpper(text[:1]) + text[1:]
	}

	return strings.TrimSpace(text)
}
