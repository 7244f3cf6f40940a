package app

import (
	"net/http"
	"sync"
	"time"

	"devwrite/internal/markdown"

	"github.com/google/uuid"
)

// SessionCookie carries a reader's session id.
const SessionCookie = "devwrite_session"

// DefaultSessionIdle is how long an unused session is kept.
const DefaultSessionIdle = 30 * time.Minute

// Sessions gives every reader their own markdown.Session, so one reader's
// copy clicks never show up on another reader's page.
type Sessions struct {
	p     *markdown.Pipeline
	clip  markdown.Clipboard
	clock markdown.Clock
	reset time.Duration
	idle  time.Duration

	mu   sync.Mutex
	byID map[string]*sessionEntry
}

type sessionEntry struct {
	s    *markdown.Session
	seen time.Time
}

func NewSessions(p *markdown.Pipeline, clip markdown.Clipboard, clock markdown.Clock, reset, idle time.Duration) *Sessions {
	if clock == nil {
		clock = markdown.SystemClock
	}
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Sessions{
		p:     p,
		clip:  clip,
		clock: clock,
		reset: reset,
		idle:  idle,
		byID:  make(map[string]*sessionEntry),
	}
}

// For returns the session named by the request cookie. A request without
// a usable cookie gets a new session and a Set-Cookie for it; a well-formed
// id the registry no longer knows, as after a restart, is recreated as is.
func (ss *Sessions) For(w http.ResponseWriter, r *http.Request) *markdown.Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return ss.get(c.Value)
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ss.get(id)
}

func (ss *Sessions) get(id string) *markdown.Session {
	now := ss.clock.Now()

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if e, ok := ss.byID[id]; ok {
		e.seen = now
		return e.s
	}
	ss.pruneLocked(now)
	e := &sessionEntry{
		s:    ss.p.NewSession(markdown.NewCopyTracker(ss.clip, ss.clock, ss.reset)),
		seen: now,
	}
	ss.byID[id] = e
	return e.s
}

func (ss *Sessions) pruneLocked(now time.Time) {
	for id, e := range ss.byID {
		if now.Sub(e.seen) > ss.idle {
			delete(ss.byID, id)
		}
	}
}

// Len is the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.byID)
}
