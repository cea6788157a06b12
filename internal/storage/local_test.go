package storage

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadFixture(t *testing.T, filename, contentType, body string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["images"]
	require.Len(t, files, 1)
	return files[0]
}

func TestSave(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	t.Run("writes the file and returns a URL path", func(t *testing.T) {
		fh := uploadFixture(t, "proof.png", "image/png", "png-bytes")

		url, err := store.Save(ScopeAnswers, "answer-1", fh)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(url, "/uploads/answers/answer-1/"), "got %q", url)
		assert.True(t, strings.HasSuffix(url, "-proof.png"), "got %q", url)

		onDisk := filepath.Join(store.Root(), strings.TrimPrefix(url, "/uploads/"))
		data, err := os.ReadFile(onDisk)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("separate scope keys never collide", func(t *testing.T) {
		first, err := store.Save(ScopeQuestions, NewScopeKey(), uploadFixture(t, "a.jpg", "image/jpeg", "one"))
		require.NoError(t, err)
		second, err := store.Save(ScopeQuestions, NewScopeKey(), uploadFixture(t, "a.jpg", "image/jpeg", "two"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects non-image content types", func(t *testing.T) {
		fh := uploadFixture(t, "payload.png", "application/octet-stream", "binary")
		_, err := store.Save(ScopeAnswers, "answer-1", fh)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("rejects mismatched extensions", func(t *testing.T) {
		fh := uploadFixture(t, "script.sh", "image/png", "#!/bin/sh")
		_, err := store.Save(ScopeAnswers, "answer-1", fh)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
}
