package filestorage

import (
	"context"
	"io"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.Must(uuid.NewV4())
	require.NoError(t, s.Save(ctx, []byte("görsel"), id, "image/png", &Metadata{Kind: "news"}))

	ok, err := s.Exist(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "görsel", string(data))

	r, err := s.LoadReader(ctx, id)
	require.NoError(t, err)
	data, err = io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "görsel", string(data))

	info, err := s.GetFileInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(len("görsel")), info.Size)

	var names []string
	require.NoError(t, s.ListRoot(ctx, func(fi FileInfo) error {
		names = append(names, fi.Name)
		return nil
	}))
	assert.Equal(t, []string{id.String()}, names)

	require.NoError(t, s.Move(ctx, id.String(), UnknownDir+id.String()))
	ok, err = s.Exist(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	names = nil
	require.NoError(t, s.ListRoot(ctx, func(fi FileInfo) error {
		names = append(names, fi.Name)
		return nil
	}))
	assert.Equal(t, []string{UnknownDir + id.String()}, names)
	assert.True(t, IsUnknown(names[0]))

	_, err = s.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, id))
}

func TestMetadataMap(t *testing.T) {
	assert.Equal(t, map[string]string{"kind": "project", "entityId": "42"}, Metadata{Kind: "project", EntityId: "42"}.GetMap())
	assert.Empty(t, Metadata{}.GetMap())
}
