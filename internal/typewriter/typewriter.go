// Package typewriter reveals model output progressively and renders each prefix as HTML.
package typewriter

import (
	"context"
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StateRevealing State = "revealing"
	StateComplete  State = "complete"
)

const DefaultSpeed = 15 * time.Millisecond

type Frame struct {
	Revealed int    `json:"revealed"`
	Total    int    `json:"total"`
	State    State  `json:"state"`
	Text     string `json:"-"`
	HTML     string `json:"html"`
}

// StepSize is the number of runes revealed per tick for content of the given length.
func StepSize(total int) int {
	switch {
	case total > 1000:
		return 8
	case total > 300:
		return 4
	default:
		return 2
	}
}

// TicksFor is how many ticks the reveal of total runes takes.
func TicksFor(total int) int {
	if total <= 0 {
		return 0
	}
	step := StepSize(total)
	return (total + step - 1) / step
}

// Typewriter holds one piece of content being revealed. Reveal is rune based so
// multi-byte text is never split mid-character.
type Typewriter struct {
	speed  time.Duration
	render func(string) string

	mu       sync.Mutex
	runes    []rune
	revealed int
	state    State

	closeOnce sync.Once
	closed    chan struct{}
}

// New returns an idle typewriter. A speed of zero or less reveals everything at once.
// render may be nil, in which case frames carry only text.
func New(speed time.Duration, render func(string) string) *Typewriter {
	return &Typewriter{
		speed:  speed,
		render: render,
		state:  StateIdle,
		closed: make(chan struct{}),
	}
}

// SetContent restarts the reveal from an empty prefix; any reveal in progress is abandoned.
func (t *Typewriter) SetContent(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runes = []rune(content)
	t.revealed = 0

	switch {
	case len(t.runes) == 0:
		t.state = StateIdle
	case t.speed <= 0:
		t.revealed = len(t.runes)
		t.state = StateComplete
	default:
		t.state = StateRevealing
	}
}

func (t *Typewriter) Snapshot() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frameLocked()
}

// Close stops any running reveal. No frame is emitted after Close returns.
func (t *Typewriter) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		close(t.closed)
		t.mu.Unlock()
	})
}

func (t *Typewriter) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

// Run drives the reveal until it completes, ctx is done, or Close is called.
// emit is called with the typewriter locked, so a frame always belongs to the
// current content; emit must not call back into the Typewriter.
func (t *Typewriter) Run(ctx context.Context, emit func(Frame) error) error {
	if t.speed <= 0 {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.state == StateIdle || t.isClosed() {
			return nil
		}
		return emit(t.frameLocked())
	}

	ticker := time.NewTicker(t.speed)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.closed:
			return nil
		case <-ticker.C:
		}

		done, err := t.step(emit)
		if err != nil || done {
			return err
		}
	}
}

// step advances one tick and emits the resulting frame.
func (t *Typewriter) step(emit func(Frame) error) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isClosed() {
		return true, nil
	}
	if t.state != StateRevealing {
		return true, nil
	}

	t.advanceLocked()
	if err := emit(t.frameLocked()); err != nil {
		return true, err
	}
	return t.state == StateComplete, nil
}

func (t *Typewriter) advanceLocked() {
	total := len(t.runes)
	t.revealed += StepSize(total)
	if t.revealed >= total {
		t.revealed = total
		t.state = StateComplete
	}
}

func (t *Typewriter) frameLocked() Frame {
	prefix := string(t.runes[:t.revealed])
	f := Frame{
		Revealed: t.revealed,
		Total:    len(t.runes),
		State:    t.state,
		Text:     prefix,
	}
	if t.render != nil {
		f.HTML = t.render(prefix)
	}
	return f
}
