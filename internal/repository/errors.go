// Package repository holds the in-memory collections of the service (users,
// sessions, tasks and id counters) behind types that serialize every
// read-modify-write and persist the affected document through the store.
//
// The sentinel errors below let handlers choose a response status with
// errors.Is without knowing which repository produced them.
package repository

import "errors"

// ErrValidation is returned for missing or malformed input, including a
// duplicate email at registration. Handlers translate it into HTTP 400.
var ErrValidation = errors.New("validation failed")

// ErrInvalidCredentials is returned by login when the email is unknown or the
// password does not match. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned when a session token is missing, unknown or
// expired. Handlers translate it into HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrNotFound is returned when a task does not exist or belongs to another
// user. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrHashing is returned when the password hash cannot be computed. The
// registration is aborted and nothing is stored.
var ErrHashing = errors.New("password hashing failed")
