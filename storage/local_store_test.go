package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "localhost:8080")
	require.NoError(t, err)
	require.NoError(t, store.EnsureBuckets([]string{"stage-uploads", "stage-results"}))
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Upload("stage-uploads", "room.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blob/stage-uploads/room.jpg", url)
	assert.Equal(t, url, store.URL("stage-uploads", "room.jpg"))

	data, err := store.Read("stage-uploads", "room.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	onDisk, err := os.ReadFile(filepath.Join(store.BasePath(), "stage-uploads", "room.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), onDisk)

	require.NoError(t, store.Delete("stage-uploads", "room.jpg"))
	_, err = store.Read("stage-uploads", "room.jpg")
	require.Error(t, err)
}

func TestLocalStoreDeleteMissingObjectIsNoError(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete("stage-uploads", "never-existed.jpg"))
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Upload("stage-uploads", "../../etc/passwd", []byte("nope"), "text/plain")
	require.Error(t, err)

	_, err = store.Read("stage-uploads", "../../../etc/passwd")
	require.Error(t, err)
}

func TestSplitObjectURL(t *testing.T) {
	prefix := "http://localhost:8080/blob/"

	bucket, objectName, ok := SplitObjectURL(prefix+"stage-uploads/room.jpg", prefix)
	require.True(t, ok)
	assert.Equal(t, "stage-uploads", bucket)
	assert.Equal(t, "room.jpg", objectName)

	// nested object names keep their path
	bucket, objectName, ok = SplitObjectURL(prefix+"stage-results/2024/room.jpg", prefix)
	require.True(t, ok)
	assert.Equal(t, "stage-results", bucket)
	assert.Equal(t, "2024/room.jpg", objectName)

	_, _, ok = SplitObjectURL("http://elsewhere.example/stage-uploads/room.jpg", prefix)
	assert.False(t, ok)

	_, _, ok = SplitObjectURL(prefix+"bucket-only", prefix)
	assert.False(t, ok)

	_, _, ok = SplitObjectURL(prefix, prefix)
	assert.False(t, ok)
}
