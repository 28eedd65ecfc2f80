package model

import "time"

// Session is a bearer credential issued on login. It is valid until
// CreatedAt plus the session TTL.
type Session struct {
	UserID      int64     `json:"userId"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"createdAt"`
	DisplayName string    `json:"displayName"`
}

// ExpiresAt reports when the session stops being accepted.
func (s Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// Expired reports whether the session is no longer valid at now. A session
// is rejected at and after its expiry instant.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.ExpiresAt(ttl))
}
