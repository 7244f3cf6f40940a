package markdown

import (
	"log"
	"sync"
	"time"
)

// DefaultCopyReset is how long a code block shows "copied".
const DefaultCopyReset = 2000 * time.Millisecond

// Clipboard receives copied code. Writes are best-effort.
type Clipboard interface {
	WriteText(text string) error
}

// Clock schedules the reversion of copy flags. Callbacks may run on any
// goroutine and are never cancelled.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type nopClipboard struct{}

func (nopClipboard) WriteText(string) error { return nil }

type copyEntry struct {
	copied   bool
	deadline time.Time
	gen      uint64
}

// CopyTracker remembers which code texts were copied recently. Identical
// code blocks share one entry.
type CopyTracker struct {
	clock Clock
	clip  Clipboard
	reset time.Duration

	mu      sync.Mutex
	gen     uint64
	entries map[string]copyEntry
}

func NewCopyTracker(clip Clipboard, clock Clock, reset time.Duration) *CopyTracker {
	if clip == nil {
		clip = nopClipboard{}
	}
	if clock == nil {
		clock = SystemClock
	}
	if reset <= 0 {
		reset = DefaultCopyReset
	}
	return &CopyTracker{
		clock:   clock,
		clip:    clip,
		reset:   reset,
		entries: make(map[string]copyEntry),
	}
}

// RequestCopy writes text to the clipboard and flags it as copied until the
// reset delay passes. A newer request for the same text restarts the delay;
// the older timer then finds a different generation and does nothing.
func (t *CopyTracker) RequestCopy(text string) {
	if err := t.clip.WriteText(text); err != nil {
		log.Printf("[copy] clipboard write failed: %v", err)
	}

	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.entries[text] = copyEntry{
		copied:   true,
		deadline: t.clock.Now().Add(t.reset),
		gen:      gen,
	}
	t.mu.Unlock()

	t.clock.AfterFunc(t.reset, func() { t.expire(text, gen) })
}

func (t *CopyTracker) expire(text string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[text]; ok && e.gen == gen {
		delete(t.entries, text)
	}
}

func (t *CopyTracker) IsCopied(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[text].copied
}

// Deadline is when the copied flag for text reverts.
func (t *CopyTracker) Deadline(text string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[text]
	return e.deadline, ok
}
