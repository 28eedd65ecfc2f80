package repository

import (
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-tracker/internal/store"
	"github.com/iliyamo/task-tracker/internal/utils"
)

var testHasher = utils.NewPasswordHasher(utils.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	s, err := store.New(t.TempDir(), log)
	require.NoError(t, err)
	return s
}

// reopen builds a fresh Store over the same directory, as a restart would.
func reopen(t *testing.T, s *store.Store) *store.Store {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	s2, err := store.New(s.Dir(), log)
	require.NoError(t, err)
	return s2
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }
func (failingHasher) Verify(string, string) bool  { return false }
