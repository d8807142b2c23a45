package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchivePutGetList(t *testing.T) {
	ctx := context.Background()
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, archive.Put(ctx, "library/b.json", []byte(`{"students":[]}`)))
	require.NoError(t, archive.Put(ctx, "library/a.json", []byte(`{}`)))
	require.NoError(t, archive.Put(ctx, "payroll/c.json", []byte(`{}`)))

	data, err := archive.Get(ctx, "library/b.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"students":[]}`, string(data))

	objects, err := archive.List(ctx, "library/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "library/a.json", objects[0].Key)
	assert.Equal(t, int64(2), objects[0].Size)

	require.NoError(t, archive.Delete(ctx, "library/a.json"))
	_, err = archive.Get(ctx, "library/a.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalArchiveRejectsEscapingKeys(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside.json", "", "/etc/passwd"} {
		assert.Error(t, archive.Put(context.Background(), key, []byte(`{}`)), key)
	}
}
