package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

// Session is the server-side state of one signed-in user.
type Session struct {
	UserID   string
	Diary    *Diary
	OpenedAt time.Time

	// mu serialises requests of one user so the active date cannot change
	// between selecting it and reading the result.
	mu       sync.Mutex
	lastUsed atomic.Int64
}

// Do runs fn with exclusive use of the session's diary.
func (s *Session) Do(fn func(d *Diary) error) error {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Diary)
}

func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load()).UTC()
}

func (s *Session) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

// SessionRegistry creates sessions on sign-in and drops them on sign-out.
type SessionRegistry struct {
	meals domain.MealRepository

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(meals domain.MealRepository) *SessionRegistry {
	return &SessionRegistry{
		meals:    meals,
		sessions: make(map[string]*Session),
	}
}

// Open starts a fresh session, discarding any cached state of a previous one.
func (r *SessionRegistry) Open(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.newSession(userID)
	r.sessions[userID] = s
	return s
}

// Get returns the user's session, opening one when a valid token outlived
// the in-memory state (e.g. after a restart).
func (r *SessionRegistry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := r.newSession(userID)
	r.sessions[userID] = s
	return s
}

// Close tears down the session; closing an unknown user is a no-op.
func (r *SessionRegistry) Close(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
}

// CloseIdle drops sessions not used since cutoff and returns how many went.
// The next request of such a user reopens a session from the store.
func (r *SessionRegistry) CloseIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(r.sessions, id)
			closed++
		}
	}
	return closed
}

func (r *SessionRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

func (r *SessionRegistry) newSession(userID string) *Session {
	s := &Session{
		UserID:   userID,
		Diary:    NewDiary(userID, r.meals),
		OpenedAt: time.Now().UTC(),
	}
	s.touch()
	return s
}
