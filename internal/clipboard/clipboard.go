// Package clipboard provides the text capability the copy/paste manager reads
// from and writes to.
package clipboard

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/zjrosen/gridclip/internal/log"
)

// ErrUnavailable is returned by System when no clipboard utility is installed
// and the text cannot be read any other way.
var ErrUnavailable = errors.New("system clipboard unavailable")

// Clipboard yields and accepts plain text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// System uses the OS clipboard. Inside SSH, tmux or screen sessions writes are
// also sent to the terminal as an OSC 52 sequence so the local clipboard is
// updated.
type System struct {
	// Terminal receives OSC 52 sequences. Nil means os.Stderr.
	Terminal io.Writer
}

// ReadText returns the current clipboard contents.
func (s System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		log.Debug(log.CatIO, "clipboard read failed", "error", err)
		return "", err
	}
	return text, nil
}

// WriteText replaces the clipboard contents.
func (s System) WriteText(text string) error {
	if shouldUseOSC52() {
		if err := s.writeOSC52(text); err != nil {
			return err
		}
		if clipboard.Unsupported {
			return nil
		}
		// Best effort; the terminal already has the text.
		if err := clipboard.WriteAll(text); err != nil {
			log.Debug(log.CatIO, "clipboard write failed after osc52", "error", err)
		}
		return nil
	}
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

func (s System) writeOSC52(text string) error {
	w := s.Terminal
	if w == nil {
		w = os.Stderr
	}
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}

// shouldUseOSC52 reports whether the process runs in a remote or multiplexed
// terminal where the OS clipboard is not the user's clipboard.
func shouldUseOSC52() bool {
	for _, key := range []string{"SSH_TTY", "SSH_CONNECTION", "TMUX", "STY"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// Memory is an in-process clipboard for tests and headless hosts.
type Memory struct {
	mu     sync.Mutex
	text   string
	reads  int
	writes int
	// ReadErr and WriteErr, when set, are returned instead of touching text.
	ReadErr  error
	WriteErr error
}

// NewMemory creates a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

// ReadText returns the stored text.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

// WriteText stores text.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	return nil
}

// Text returns the stored text without counting a read.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Reads returns how many times ReadText was called.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns how many times WriteText was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
