package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newSessionFixture(t *testing.T) (*store.Store, *UserRepo, *SessionRepo, *fakeClock) {
	t.Helper()
	s := newTestStore(t)
	users := NewUserRepo(s, NewCounters(s), testHasher)
	_, err := users.Register("A", "a@x.com", "p")
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	sessions := NewSessionRepo(s, users, DefaultSessionTTL).WithClock(clock.Now)
	return s, users, sessions, clock
}

func TestSessionRepo_LoginIssuesSingleSession(t *testing.T) {
	_, _, sessions, clock := newSessionFixture(t)

	sess, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.UserID)
	assert.Equal(t, "A", sess.DisplayName)
	assert.Equal(t, clock.t, sess.CreatedAt)
	assert.Len(t, sess.Token, 128)
	assert.Regexp(t, "^[0-9a-f]+$", sess.Token)
}

func TestSessionRepo_LoginFailuresAreGeneric(t *testing.T) {
	_, _, sessions, _ := newSessionFixture(t)

	_, err := sessions.Login("a@x.com", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = sessions.Login("missing@x.com", "p")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 0, sessions.Count())
}

func TestSessionRepo_MultipleConcurrentSessionsPerUser(t *testing.T) {
	_, _, sessions, _ := newSessionFixture(t)

	a, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)
	b, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	_, err = sessions.Validate(a.Token)
	assert.NoError(t, err)
	_, err = sessions.Validate(b.Token)
	assert.NoError(t, err)
}

func TestSessionRepo_ValidateUnknownToken(t *testing.T) {
	_, _, sessions, _ := newSessionFixture(t)
	_, err := sessions.Validate("deadbeef")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = sessions.Validate("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionRepo_ValidateNearMissTokens(t *testing.T) {
	_, _, sessions, _ := newSessionFixture(t)
	sess, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)

	last := sess.Token[len(sess.Token)-1]
	flipped := sess.Token[:len(sess.Token)-1] + string("0123456789abcdef"[(strings.IndexByte("0123456789abcdef", last)+1)%16])
	for _, tok := range []string{flipped, sess.Token[:64], sess.Token + "0", strings.ToUpper(sess.Token)} {
		_, err := sessions.Validate(tok)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}
	got, err := sessions.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
}

func TestSessionRepo_ExpiryBoundary(t *testing.T) {
	const eps = time.Millisecond

	tests := []struct {
		name  string
		after time.Duration
		ok    bool
	}{
		{"just before expiry", DefaultSessionTTL - eps, true},
		{"at expiry", DefaultSessionTTL, false},
		{"just after expiry", DefaultSessionTTL + eps, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, sessions, clock := newSessionFixture(t)
			sess, err := sessions.Login("a@x.com", "p")
			require.NoError(t, err)

			clock.Advance(tc.after)
			got, err := sessions.Validate(sess.Token)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, sess, got)
			} else {
				assert.ErrorIs(t, err, ErrUnauthenticated)
			}
		})
	}
}

func TestSessionRepo_ValidatePersistsPrunedSet(t *testing.T) {
	s, _, sessions, clock := newSessionFixture(t)

	old, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)
	clock.Advance(23 * time.Hour)
	fresh, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = sessions.Validate(fresh.Token)
	require.NoError(t, err)

	stored := store.Load(reopen(t, s), store.Sessions, []model.Session{})
	require.Len(t, stored, 1)
	assert.Equal(t, fresh.Token, stored[0].Token)
	assert.NotEqual(t, old.Token, stored[0].Token)
}

func TestSessionRepo_Prune(t *testing.T) {
	_, _, sessions, clock := newSessionFixture(t)
	for i := 0; i < 3; i++ {
		_, err := sessions.Login("a@x.com", "p")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, sessions.Prune())

	clock.Advance(DefaultSessionTTL)
	assert.Equal(t, 3, sessions.Prune())
	assert.Equal(t, 0, sessions.Count())
}

func TestSessionRepo_SessionsSurviveRestart(t *testing.T) {
	s, users, sessions, clock := newSessionFixture(t)
	sess, err := sessions.Login("a@x.com", "p")
	require.NoError(t, err)

	s2 := reopen(t, s)
	sessions2 := NewSessionRepo(s2, users, 0).WithClock(clock.Now)
	assert.Equal(t, DefaultSessionTTL, sessions2.TTL())
	got, err := sessions2.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}
