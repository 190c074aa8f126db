package auth

import (
	"sync"
	"time"
)

// User is the authenticated account identity extracted from the
// provider's session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session holds the tokens and identity for one signed-in account.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Holder owns the current session and lets interested components
// observe changes. It is constructed once at the composition root and
// injected wherever ambient access to the signed-in identity is needed;
// there is no package-level global.
type Holder struct {
	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	nextSub int
}

func NewHolder() *Holder {
	return &Holder{subs: make(map[int]func(*Session))}
}

// Current returns the active session, or nil when signed out.
func (h *Holder) Current() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// OwnerID returns the signed-in account id, or "" when signed out.
func (h *Holder) OwnerID() string {
	if s := h.Current(); s != nil {
		return s.User.ID
	}
	return ""
}

// Set replaces the session (nil on sign-out) and notifies subscribers.
func (h *Holder) Set(s *Session) {
	h.mu.Lock()
	h.current = s
	subs := make([]func(*Session), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// Subscribe registers fn to run on every session change and returns an
// unsubscribe function.
func (h *Holder) Subscribe(fn func(*Session)) func() {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}
