package transcription

import (
	"fmt"

	"github.com/RyanBlaney/sonido-scribe/algorithms/tonal"
)

// Note is a single transcribed note: its name, the offset of its first
// sample in the source buffer, and its length in samples.
type Note struct {
	Name     tonal.NoteName `json:"name"`
	Start    int            `json:"start"`
	Duration int            `json:"duration"`
}

func (n Note) String() string {
	return fmt.Sprintf("Note: %s, Start: %d, Duration: %d", n.Name, n.Start, n.Duration)
}
