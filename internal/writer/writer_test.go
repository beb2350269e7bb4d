package writer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipSinkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sitemaps", "sitemap1.xml.gz")

	w, err := GzipSink{}.Open(path)
	require.NoError(t, err)

	_, err = io.WriteString(w, "<urlset></urlset>\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	got, err := ReadGzip(path)
	require.NoError(t, err)
	assert.Equal(t, "<urlset></urlset>\n", string(got))
}

func TestGzipSinkOpenFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := GzipSink{}.Open(filepath.Join(blocker, "sitemap1.xml.gz"))
	assert.Error(t, err)
}

func TestMemorySink(t *testing.T) {
	m := NewMemorySink()

	w, err := m.Open("b.xml.gz")
	require.NoError(t, err)
	_, err = w.Write([]byte("bee"))
	require.NoError(t, err)

	_, ok := m.File("b.xml.gz")
	assert.False(t, ok, "contents are stored on close")

	require.NoError(t, w.Close())
	_, err = w.Write([]byte("more"))
	assert.Error(t, err)

	w, err = m.Open("a.xml.gz")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, ok := m.File("b.xml.gz")
	require.True(t, ok)
	assert.Equal(t, "bee", string(b))
	assert.Equal(t, []string{"a.xml.gz", "b.xml.gz"}, m.Paths())
	assert.Equal(t, 1, m.Opens("b.xml.gz"))
}
