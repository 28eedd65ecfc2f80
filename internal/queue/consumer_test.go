package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-tracker/internal/model"
)

func TestFormatLine(t *testing.T) {
	done := true
	line := FormatLine(Event{
		Type:       TypeTaskUpdated,
		UserID:     3,
		TaskID:     9,
		TaskName:   "buy milk",
		Completed:  &done,
		OccurredAt: "2024-01-02T03:04:05Z",
	})
	assert.Equal(t, "[2024-01-02T03:04:05Z] task.updated | user_id=3 | task_id=9 | name=\"buy milk\" | completed=true\n", line)

	line = FormatLine(Event{Type: TypeSessionCreated, UserID: 1, OccurredAt: "x"})
	assert.Equal(t, "[x] session.created | user_id=1\n", line)
}

func TestHandleMessageAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	for _, ev := range []Event{
		UserRegistered(model.User{ID: 1, Name: "A", Email: "a@x"}),
		TaskCreated(model.Task{ID: 4, UserID: 1, Name: "write"}),
		TaskDeleted(1, 4),
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, HandleMessage(dir, body))
	}

	raw, err := os.ReadFile(filepath.Join(dir, AuditLogName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "user.registered | user_id=1")
	assert.Contains(t, lines[1], "task.created | user_id=1 | task_id=4 | name=\"write\" | completed=false")
	assert.Contains(t, lines[2], "task.deleted | user_id=1 | task_id=4")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("not json")))
	assert.Error(t, HandleMessage(dir, []byte(`{"user_id":1}`)))

	_, err := os.Stat(filepath.Join(dir, AuditLogName))
	assert.True(t, os.IsNotExist(err))
}

func TestEventsCarryNoSecrets(t *testing.T) {
	ev := SessionCreated(model.Session{UserID: 2, Token: "deadbeef", DisplayName: "B"})
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "deadbeef")
	assert.Equal(t, int64(2), ev.UserID)
	assert.NotEmpty(t, ev.OccurredAt)
}
