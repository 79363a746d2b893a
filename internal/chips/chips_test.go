package chips

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questline/internal/models"
)

func testRecord() *models.SuggestionRecord {
	return &models.SuggestionRecord{
		TurnID: "n1",
		Chips:  []string{"Tell me more", "Who are you?"},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	rec, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.Set("sess-1", testRecord()))
	rec, err = s.Get("sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "n1", rec.TurnID)
	assert.Equal(t, []string{"Tell me more", "Who are you?"}, rec.Chips)

	require.NoError(t, s.Clear("sess-1"))
	rec, err = s.Get("sess-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set("sess-1", testRecord()))

	rec, err := s.Get("sess-1")
	require.NoError(t, err)
	rec.Chips[0] = "mutated"

	again, err := s.Get("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Tell me more", again.Chips[0])
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	rec, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.Set("sess-1", testRecord()))
	rec, err = s.Get("sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, testRecord(), rec)

	require.NoError(t, s.Clear("sess-1"))
	rec, err = s.Get("sess-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Clearing a missing record is not an error.
	require.NoError(t, s.Clear("sess-1"))
}

func TestFileStoreFlattensSessionKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("../escape/attempt", testRecord()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "record must land inside the store directory")
	assert.Equal(t, ".yaml", filepath.Ext(entries[0].Name()))

	rec, err := s.Get("../escape/attempt")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "n1", rec.TurnID)
}
