// Package sound provides notification chime implementations.
package sound

import (
	"fmt"
	"io"
	"os"
)

// BellChime rings the terminal bell. Playback failures (a closed or
// redirected stream, a terminal with the bell disabled) are swallowed:
// the chime must never block or fail a state update.
type BellChime struct {
	out io.Writer
}

// NewBellChime creates a chime writing the BEL byte to w. A nil writer
// defaults to stdout.
func NewBellChime(w io.Writer) *BellChime {
	if w == nil {
		w = os.Stdout
	}
	return &BellChime{out: w}
}

// Prime verifies the output stream is usable. It is called at most once
// per store lifetime.
func (c *BellChime) Prime() error {
	if c.out == nil {
		return fmt.Errorf("bell chime: no output stream")
	}
	return nil
}

// Play rings the bell, ignoring write errors.
func (c *BellChime) Play() {
	_, _ = c.out.Write([]byte("\a"))
}

// SilentChime is a no-op chime for non-interactive commands and tests.
type SilentChime struct{}

// NewSilentChime creates a chime that does nothing.
func NewSilentChime() *SilentChime { return &SilentChime{} }

// Prime does nothing.
func (c *SilentChime) Prime() error { return nil }

// Play does nothing.
func (c *SilentChime) Play() {}
