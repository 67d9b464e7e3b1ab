package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}
)

func newTestStore(t *testing.T) (*ProfileStore, string) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	dir := t.TempDir()
	store, err := NewProfileStore(dir, log)
	require.NoError(t, err)
	return store, dir
}

func TestStageAndCommit(t *testing.T) {
	store, dir := newTestStore(t)

	staged, err := store.Stage("alice", jpegHeader)
	require.NoError(t, err)
	assert.Equal(t, "profile_alice.jpg", staged.FileName)

	_, err = os.Stat(store.Path("alice"))
	assert.True(t, os.IsNotExist(err), "file must not appear before commit")

	require.NoError(t, staged.Commit())
	data, err := os.ReadFile(filepath.Join(dir, "profile_alice.jpg"))
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)

	staged.Discard()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStageAcceptsPNGVerbatim(t *testing.T) {
	store, _ := newTestStore(t)

	staged, err := store.Stage("bob", pngHeader)
	require.NoError(t, err)
	require.NoError(t, staged.Commit())

	data, err := os.ReadFile(store.Path("bob"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestStageRejectsNonImage(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.Stage("carol", []byte("not a picture at all"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiscardLeavesNothing(t *testing.T) {
	store, dir := newTestStore(t)

	staged, err := store.Stage("dave", jpegHeader)
	require.NoError(t, err)
	staged.Discard()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
