// Package clipboard exports finished summaries to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// CopySummary puts the summary text on the system clipboard.
func CopySummary(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard backend exists on this system.
func Available() bool {
	return !clipboard.Unsupported
}
