package model

// User is an account as persisted in users.json.
//
// Fields:
//
//	ID           assigned by the registry, monotonic, never reused.
//	Name         display name, copied into sessions.
//	Email        login key, stored trimmed and lower-cased.
//	PasswordHash PHC-encoded Argon2id hash. Never sent to clients; use Public.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Public returns a copy of u that is safe to return to a client.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
