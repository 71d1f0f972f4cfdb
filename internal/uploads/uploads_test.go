package uploads

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTo(file *multipart.FileHeader, dst string) error {
	return os.WriteFile(dst, []byte(file.Filename), 0o644)
}

func TestStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewStore(dir)
	require.NoError(t, err)
	store.now = func() time.Time { return time.Unix(0, 1700000000123456789) }

	path, err := store.Save(&multipart.FileHeader{Filename: "../../etc/Foto.PNG"}, writeTo)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000123456789.png", path)

	_, err = os.Stat(filepath.Join(dir, "1700000000123456789.png"))
	assert.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(filepath.Join(dir, "1700000000123456789.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(path), "already removed")
	assert.NoError(t, store.Remove("https://cdn.example/x.png"))
}

func TestStore_RejectsNonImages(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"script.sh", "page.html", "noext", "foto.png.exe"} {
		_, err := store.Save(&multipart.FileHeader{Filename: name}, writeTo)
		assert.ErrorIs(t, err, ErrExtensionNotAllowed, name)
	}
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
