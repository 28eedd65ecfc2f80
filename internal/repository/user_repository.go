package repository

import (
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/store"
	"github.com/iliyamo/task-tracker/internal/utils"
)

// PasswordHasher is the one-way hash used for stored credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(encoded, plain string) bool
}

// UserRepo is the identity registry: it owns users.json, creates accounts
// with hashed passwords and checks credentials at login.
type UserRepo struct {
	mu        sync.Mutex
	store     *store.Store
	counters  *Counters
	hasher    PasswordHasher
	users     []model.User
	dummyHash string
}

// NewUserRepo loads users.json and makes sure the user counter is not behind
// the highest stored id.
func NewUserRepo(s *store.Store, counters *Counters, hasher PasswordHasher) *UserRepo {
	users := store.Load(s, store.Users, []model.User{})
	var maxID int64
	for _, u := range users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	counters.observeUsers(maxID)

	// Compared against when the email is unknown so that a miss costs the
	// same as a wrong password.
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		dummy = utils.UnusableHash
	}

	return &UserRepo{store: s, counters: counters, hasher: hasher, users: users, dummyHash: dummy}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it without the password hash.
// Hashing happens before the collection is locked; if it fails nothing is
// stored and ErrHashing is returned. A second account with the same email is
// rejected with ErrValidation.
func (r *UserRepo) Register(name, email, password string) (model.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrHashing, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findByEmailLocked(email); ok {
		return model.User{}, fmt.Errorf("%w: email already registered", ErrValidation)
	}

	u := model.User{
		ID:           r.counters.NextUserID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	r.users = append(r.users, u)
	r.store.Save(store.Users, r.users)
	return u.Public(), nil
}

// Verify returns the user owning email if password matches. Unknown email
// and wrong password both yield ErrInvalidCredentials.
func (r *UserRepo) Verify(email, password string) (model.User, error) {
	email = NormalizeEmail(email)

	r.mu.Lock()
	u, ok := r.findByEmailLocked(email)
	r.mu.Unlock()

	if !ok {
		_ = r.hasher.Verify(r.dummyHash, password)
		return model.User{}, ErrInvalidCredentials
	}
	if !r.hasher.Verify(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u.Public(), nil
}

// GetByID returns the public view of a user.
func (r *UserRepo) GetByID(id int64) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u.Public(), nil
		}
	}
	return model.User{}, ErrNotFound
}

func (r *UserRepo) findByEmailLocked(email string) (model.User, bool) {
	for _, u := range r.users {
		if u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}
