package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsatony/pillhub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewFileStore(FileConfig{BasePath: dir})
	require.NoError(t, err)
	return s, dir
}

func TestNewFileStoreCreatesDirectory(t *testing.T) {
	_, dir := newStore(t)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFileStoreRequiresBasePath(t *testing.T) {
	_, err := NewFileStore(FileConfig{})
	assert.Error(t, err)
}

func TestLoadMissingKindIsEmpty(t *testing.T) {
	s, _ := newStore(t)

	doc, err := s.Load(context.Background(), repository.KindSchedules)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoadBlankFileIsEmpty(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapping.json"), []byte("  \n"), 0644))

	doc, err := s.Load(context.Background(), repository.KindMappings)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestSaveThenLoad(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, repository.KindMappings, []byte(`{"Zinc":{"motorId":2}}`)))

	doc, err := s.Load(ctx, repository.KindMappings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Zinc":{"motorId":2}}`, string(doc))

	// documents are pretty-printed and no temp files are left behind
	raw, err := os.ReadFile(filepath.Join(dir, "mapping.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"Zinc\"")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveOverwrites(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, repository.KindLed, []byte(`{"state":"on"}`)))
	require.NoError(t, s.Save(ctx, repository.KindLed, []byte(`{"state":"off"}`)))

	doc, err := s.Load(ctx, repository.KindLed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"off"}`, string(doc))
}

func TestCancelledContext(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx, repository.KindUsers)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, repository.KindUsers, []byte(`[]`)), context.Canceled)
}

func TestPing(t *testing.T) {
	s, dir := newStore(t)
	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, s.Ping(context.Background()))
}
