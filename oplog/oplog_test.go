// ABOUTME: Tests for the JSONL audit log
// ABOUTME: Entries round-trip with ids, costs, and error outcomes

package oplog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oplog.jsonl")

	log, err := Open(path)
	require.NoError(t, err)

	log.Record("execute", "Move 2 video(s)", 200, nil)
	log.Record("undo", "Move 2 video(s)", 200, nil)
	log.Record("execute", "Delete 1 video(s)", 50, errors.New("remote error 500: boom"))
	require.NoError(t, log.Close())

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "execute", entries[0].Action)
	assert.Equal(t, 200, entries[0].Cost)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Time.IsZero())
	assert.Empty(t, entries[0].Error)

	assert.Equal(t, "undo", entries[1].Action)
	assert.Contains(t, entries[2].Error, "boom")

	// Every entry gets its own id.
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestAppendAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oplog.jsonl")

	first, err := Open(path)
	require.NoError(t, err)
	first.Record("execute", "Create playlist: Mix", 50, nil)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	second.Record("redo", "Create playlist: Mix", 50, nil)
	require.NoError(t, second.Close())

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNilLogIsSafe(t *testing.T) {
	var log *Log

	log.Record("execute", "anything", 1, nil)
	assert.NoError(t, log.Close())
}
