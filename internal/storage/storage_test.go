package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentName(t *testing.T) {
	a := ContentName("docx", []byte("image-a"), "PNG")
	b := ContentName("docx", []byte("image-a"), ".png")
	c := ContentName("docx", []byte("image-b"), "png")

	assert.Equal(t, a, b, "same bytes must produce the same name")
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "docx-"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.True(t, strings.HasSuffix(ContentName("x", nil, ""), ".bin"))
}

func TestImageHelpers(t *testing.T) {
	assert.Equal(t, "image/jpeg", ImageContentType("JPEG"))
	assert.Equal(t, "image/png", ImageContentType("xyz"))
	assert.Equal(t, "jpg", ImageExtension(".jpeg"))
	assert.Equal(t, "png", ImageExtension("unknown"))
	assert.Equal(t, "gif", ImageExtension("gif"))
}

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "uploads/")
	require.NoError(t, err)

	name := ContentName("docx", []byte("payload"), "png")
	ref, err := store.Put(context.Background(), name, "image/png", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+name, ref)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// Повторная запись того же имени возвращает ту же ссылку
	again, err := store.Put(context.Background(), name, "image/png", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestLocalStore_RejectsPathNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.png", "a/b.png", `a\b.png`, ".."} {
		_, err := store.Put(context.Background(), name, "image/png", []byte("x"))
		assert.Error(t, err, name)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, "a.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtensionForContentType(t *testing.T) {
	tests := map[string]string{
		"image/png":                "png",
		"image/jpeg":               "jpg",
		"IMAGE/GIF; charset=utf-8": "gif",
		"image/x-emf":              "emf",
		"application/octet-stream": "",
	}
	for ct, want := range tests {
		assert.Equal(t, want, ExtensionForContentType(ct), ct)
	}
}
