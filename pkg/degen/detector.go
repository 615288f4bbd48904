package degen

import (
	"strings"
)

// Detector flags model output stuck repeating a short phrase. It counts
// exact contiguous word windows; natural prose essentially never repeats
// the same 5-gram more than a handful of times, so a high count is a
// reliable degeneracy signal.
type Detector struct {
	// WindowSize is the n-gram width in words.
	WindowSize int
	// MinWords is the minimum text length, in words, before the scan
	// applies at all.
	MinWords int
	// MaxRepeats is the highest window frequency still considered
	// well-formed. One more than this fires.
	MaxRepeats int
}

// NewDetector returns the standard 5-gram/50-word/10-repeat detector.
func NewDetector() *Detector {
	return &Detector{
		WindowSize: 5,
		MinWords:   50,
		MaxRepeats: 10,
	}
}

// IsDegenerate reports whether any WindowSize-word window occurs more
// than MaxRepeats times. Texts of MinWords words or fewer never fire.
func (d *Detector) IsDegenerate(text string) bool {
	words := strings.Fields(text)
	if len(words) <= d.MinWords || len(words) < d.WindowSize {
		return false
	}

	counts := make(map[string]int)
	for i := 0; i+d.WindowSize <= len(words); i++ {
		window := strings.Join(words[i:i+d.WindowSize], " ")
		counts[window]++
		if counts[window] > d.MaxRepeats {
			return true
		}
	}
	return false
}
