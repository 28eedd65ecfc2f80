package repository

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/store"
	"github.com/iliyamo/task-tracker/internal/utils"
)

func TestUserRepo_RegisterAssignsIDAndScrubsHash(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)

	u, err := repo.Register("A", " A@X.com ", "p")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	u2, err := repo.Register("B", "b@x.com", "q")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u2.ID)
}

func TestUserRepo_StoredRecordHoldsHashNotPassword(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)
	_, err := repo.Register("A", "a@x.com", "hunter2-secret")
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path(store.Users))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2-secret")

	var users []model.User
	require.NoError(t, json.Unmarshal(data, &users))
	require.Len(t, users, 1)
	assert.True(t, strings.HasPrefix(users[0].PasswordHash, "$argon2id$"))
}

func TestUserRepo_RegisterValidation(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)

	_, err := repo.Register("A", "", "p")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = repo.Register("A", "a@x.com", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.Register("A", "a@x.com", "p")
	require.NoError(t, err)
	_, err = repo.Register("A2", "A@X.COM", "other")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserRepo_DecoyHashFallsBackWhenHashingFails(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, utils.UnusableHash, NewUserRepo(s, NewCounters(s), failingHasher{}).dummyHash)

	ok := NewUserRepo(s, NewCounters(s), testHasher)
	assert.True(t, strings.HasPrefix(ok.dummyHash, "$argon2id$"))
	assert.NotEqual(t, utils.UnusableHash, ok.dummyHash)
}

func TestUserRepo_HashingFailureStoresNothing(t *testing.T) {
	s := newTestStore(t)
	counters := NewCounters(s)
	repo := NewUserRepo(s, counters, failingHasher{})

	_, err := repo.Register("A", "a@x.com", "p")
	require.ErrorIs(t, err, ErrHashing)

	assert.Equal(t, int64(0), counters.Snapshot().LastUserID)
	_, statErr := os.Stat(s.Path(store.Users))
	assert.True(t, os.IsNotExist(statErr))
	_, err = repo.Verify("a@x.com", "p")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserRepo_Verify(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)
	reg, err := repo.Register("A", "a@x.com", "p")
	require.NoError(t, err)

	u, err := repo.Verify("A@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, reg, u)
	assert.Empty(t, u.PasswordHash)

	_, errWrong := repo.Verify("a@x.com", "wrong")
	_, errUnknown := repo.Verify("nobody@x.com", "p")
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestUserRepo_GetByID(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)
	reg, err := repo.Register("A", "a@x.com", "p")
	require.NoError(t, err)

	got, err := repo.GetByID(reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg, got)

	_, err = repo.GetByID(42)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserRepo_ConcurrentRegistrationsGetDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)

	const n = 16
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.Register("u", "u"+string(rune('a'+i))+"@x.com", "p")
			if err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}

	reloaded := store.Load(reopen(t, s), store.Users, []model.User{})
	assert.Len(t, reloaded, n)
}

func TestUserRepo_SurvivesRestart(t *testing.T) {
	s := newTestStore(t)
	repo := NewUserRepo(s, NewCounters(s), testHasher)
	_, err := repo.Register("A", "a@x.com", "p")
	require.NoError(t, err)

	s2 := reopen(t, s)
	repo2 := NewUserRepo(s2, NewCounters(s2), testHasher)
	_, err = repo2.Verify("a@x.com", "p")
	require.NoError(t, err)

	u, err := repo2.Register("B", "b@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)
}

func TestUserRepo_CounterCatchesUpWithStoredUsers(t *testing.T) {
	s := newTestStore(t)
	// users.json written but lastIDs.json lost
	s.Save(store.Users, []model.User{{ID: 5, Email: "e@x.com"}})

	counters := NewCounters(s)
	repo := NewUserRepo(s, counters, testHasher)
	assert.Equal(t, int64(5), counters.Snapshot().LastUserID)

	u, err := repo.Register("F", "f@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, int64(6), u.ID)
}
