package service

import (
	"fmt"
	"sync"
	"time"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/pkg/apperror"
	"github.com/google/uuid"
)

// Conversation is a live chat session. It lives in memory only and is gone after a
// restart or an idle sweep.
type Conversation struct {
	ID        string
	OwnerID   uuid.UUID
	Title     string
	Session   *ai.Session
	CreatedAt time.Time

	mu       sync.Mutex
	lastUsed time.Time
	inFlight int
}

func (c *Conversation) touch(now time.Time) {
	c.mu.Lock()
	c.lastUsed = now
	c.mu.Unlock()
}

func (c *Conversation) begin(now time.Time) {
	c.mu.Lock()
	c.inFlight++
	c.lastUsed = now
	c.mu.Unlock()
}

func (c *Conversation) end(now time.Time) {
	c.mu.Lock()
	c.inFlight--
	c.lastUsed = now
	c.mu.Unlock()
}

// idle reports whether nothing is sending and the last use is before cutoff.
func (c *Conversation) idle(cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight == 0 && c.lastUsed.Before(cutoff)
}

// Registry holds the conversations of every user. Lookups by anyone but the owner
// are reported as missing.
type Registry interface {
	Open(owner uuid.UUID, title string, session *ai.Session) *Conversation
	Get(owner uuid.UUID, id string) (*Conversation, error)
	Close(owner uuid.UUID, id string) error
	// Use marks c busy until done is called; busy conversations survive sweeps.
	Use(c *Conversation) (done func())
	Sweep(idle time.Duration) int
	Len() int
}

type registry struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	now           func() time.Time
}

func NewRegistry() Registry {
	return newRegistry(time.Now)
}

func newRegistry(now func() time.Time) *registry {
	return &registry{conversations: make(map[string]*Conversation), now: now}
}

func (r *registry) Open(owner uuid.UUID, title string, session *ai.Session) *Conversation {
	now := r.now()
	c := &Conversation{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Title:     title,
		Session:   session,
		CreatedAt: now,
		lastUsed:  now,
	}

	r.mu.Lock()
	r.conversations[c.ID] = c
	r.mu.Unlock()
	return c
}

func (r *registry) Get(owner uuid.UUID, id string) (*Conversation, error) {
	r.mu.RLock()
	c, ok := r.conversations[id]
	r.mu.RUnlock()

	if !ok || c.OwnerID != owner {
		return nil, fmt.Errorf("conversation: %w", apperror.ErrNotFound)
	}
	c.touch(r.now())
	return c, nil
}

func (r *registry) Close(owner uuid.UUID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[id]
	if !ok || c.OwnerID != owner {
		return fmt.Errorf("conversation: %w", apperror.ErrNotFound)
	}
	delete(r.conversations, id)
	return nil
}

func (r *registry) Use(c *Conversation) func() {
	c.begin(r.now())
	var once sync.Once
	return func() {
		once.Do(func() { c.end(r.now()) })
	}
}

// Sweep drops conversations unused for longer than idle and reports how many went.
func (r *registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.conversations {
		if c.idle(cutoff) {
			delete(r.conversations, id)
			removed++
		}
	}
	return removed
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}
