package repository

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/store"
	"github.com/iliyamo/task-tracker/internal/utils"
)

// DefaultSessionTTL is how long a session is accepted after login.
const DefaultSessionTTL = 24 * time.Hour

// CredentialVerifier checks an email/password pair.
type CredentialVerifier interface {
	Verify(email, password string) (model.User, error)
}

// SessionRepo is the session manager: it owns sessions.json, issues tokens
// on login and resolves tokens to sessions. Expired sessions are evicted
// lazily by Validate and, when scheduled, by Prune.
type SessionRepo struct {
	mu       sync.Mutex
	store    *store.Store
	users    CredentialVerifier
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
	sessions []model.Session
}

func NewSessionRepo(s *store.Store, users CredentialVerifier, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepo{
		store:    s,
		users:    users,
		ttl:      ttl,
		now:      time.Now,
		newToken: utils.NewSessionToken,
		sessions: store.Load(s, store.Sessions, []model.Session{}),
	}
}

// WithClock replaces the time source. Used by tests.
func (r *SessionRepo) WithClock(now func() time.Time) *SessionRepo {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
	return r
}

// TTL returns the session lifetime.
func (r *SessionRepo) TTL() time.Duration { return r.ttl }

// Login verifies the credentials and returns exactly one new session.
func (r *SessionRepo) Login(email, password string) (model.Session, error) {
	u, err := r.users.Verify(email, password)
	if err != nil {
		return model.Session{}, err
	}
	token, err := r.newToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := model.Session{
		UserID:      u.ID,
		Token:       token,
		CreatedAt:   r.now().UTC(),
		DisplayName: u.Name,
	}
	r.sessions = append(r.sessions, s)
	r.store.Save(store.Sessions, r.sessions)
	return s, nil
}

// Validate evicts expired sessions and then looks token up among the rest.
func (r *SessionRepo) Validate(token string) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	if token == "" {
		return model.Session{}, ErrUnauthenticated
	}
	for _, s := range r.sessions {
		if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) == 1 {
			return s, nil
		}
	}
	return model.Session{}, ErrUnauthenticated
}

// Prune evicts expired sessions and returns how many were removed.
func (r *SessionRepo) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked()
}

// Count returns the number of stored sessions, expired ones included.
func (r *SessionRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRepo) pruneLocked() int {
	now := r.now()
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if !s.Expired(now, r.ttl) {
			kept = append(kept, s)
		}
	}
	removed := len(r.sessions) - len(kept)
	// zero the tail so dropped tokens are not retained by the backing array
	for i := len(kept); i < len(r.sessions); i++ {
		r.sessions[i] = model.Session{}
	}
	r.sessions = kept
	if removed > 0 {
		r.store.Save(store.Sessions, r.sessions)
	}
	return removed
}
