package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cmdlearn/internal/logging"
)

type testDoc struct {
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Tags  map[string]int `json:"tags"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), Options{Logger: logging.Discard()})
	require.NoError(t, err)
	return s
}

func TestOpen_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir, Options{Logger: logging.Discard()})
	require.NoError(t, err)

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_MissingDocument(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	var doc testDoc
	assert.False(t, s.Load("absent.json", &doc))
	assert.Equal(t, testDoc{}, doc)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	in := testDoc{
		Name:  "transitions",
		Count: 7,
		Tags:  map[string]int{"git": 3, "docker": 4},
	}
	require.NoError(t, s.Save("doc.json", in))

	var out testDoc
	require.True(t, s.Load("doc.json", &out))
	assert.Equal(t, in, out)
}

func TestLoad_CorruptDocument(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	path := filepath.Join(s.Dir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	doc := testDoc{Name: "untouched"}
	assert.False(t, s.Load("broken.json", &doc))
	assert.Equal(t, "untouched", doc.Name)
}

func TestSave_ReplacesExisting(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	require.NoError(t, s.Save("doc.json", testDoc{Count: 1}))
	require.NoError(t, s.Save("doc.json", testDoc{Count: 2}))

	var out testDoc
	require.True(t, s.Load("doc.json", &out))
	assert.Equal(t, 2, out.Count)
}

func TestAcquireLock_Exclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json.lock")

	first, err := acquireLock(path, LockOptions{})
	require.NoError(t, err)

	_, err = acquireLock(path, LockOptions{})
	assert.ErrorIs(t, err, ErrLockAcquireFailed)

	require.NoError(t, first.release())

	second, err := acquireLock(path, LockOptions{})
	require.NoError(t, err)
	require.NoError(t, second.release())
}

func TestLockRelease_Idempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.lock")
	lf, err := acquireLock(path, LockOptions{})
	require.NoError(t, err)

	require.NoError(t, lf.release())
	require.NoError(t, lf.release())
}
