package fs

import (
	"errors"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURLLike(t *testing.T) {
	tests := map[string]bool{
		"file:///tmp/a.txt":     true,
		"https://example.com/x": true,
		"s3://bucket/key":       true,
		"vsls:/x":               true,
		"C:\\Users\\dict.txt":   false,
		"c:/dict.txt":           false,
		"/usr/share/dict/words": false,
		"relative/words.txt":    false,
		"":                      false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsURLLike(in), in)
	}
}

func TestToURL(t *testing.T) {
	cwd := filepath.FromSlash("/work/project")

	t.Run("relative path resolves against cwd", func(t *testing.T) {
		u, err := ToURL(Path("docs/words.txt"), cwd)
		require.NoError(t, err)
		assert.Equal(t, "file:///work/project/docs/words.txt", u.String())
	})

	t.Run("absolute path is cleaned", func(t *testing.T) {
		u, err := ToURL(Path("/a/b/../c.txt"), cwd)
		require.NoError(t, err)
		assert.Equal(t, "file:///a/c.txt", u.String())
	})

	t.Run("trailing separator kept", func(t *testing.T) {
		u, err := ToURL(Path("/a/b/"), cwd)
		require.NoError(t, err)
		assert.Equal(t, "file:///a/b/", u.String())
	})

	t.Run("url string is parsed", func(t *testing.T) {
		u, err := ToURL(Path("https://example.com/dict/en.txt.gz"), cwd)
		require.NoError(t, err)
		assert.Equal(t, "https", u.Scheme)
		assert.Equal(t, "/dict/en.txt.gz", u.Path)
	})

	t.Run("url address is copied", func(t *testing.T) {
		orig := &url.URL{Scheme: "s3", Host: "b", Path: "/k"}
		u, err := ToURL(AddressOf(orig), cwd)
		require.NoError(t, err)
		u.Path = "/changed"
		assert.Equal(t, "/k", orig.Path)
	})

	t.Run("malformed inputs", func(t *testing.T) {
		for _, addr := range []Address{
			nil,
			Path(""),
			Path("http://[::1"),
			AddressOf(nil),
			AddressOf(&url.URL{Path: "/no/scheme"}),
		} {
			_, err := ToURL(addr, cwd)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAddress), "%v", err)
		}
	})
}

func TestFilePath(t *testing.T) {
	p, err := FilePath(&url.URL{Scheme: "file", Path: "/tmp/x.txt"})
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/x.txt"), p)

	_, err = FilePath(&url.URL{Scheme: "https", Host: "example.com", Path: "/x"})
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = FilePath(&url.URL{Scheme: "file", Host: "server", Path: "/share/x"})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = FilePath(nil)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestURLBasenameAndDirname(t *testing.T) {
	tests := []struct {
		in   string
		base string
		dir  string
	}{
		{"file:///a/b/c.txt", "c.txt", "file:///a/b/"},
		{"file:///a/b/", "b", "file:///a/"},
		{"file:///a", "a", "file:///"},
		{"file:///", "", "file:///"},
		{"https://example.com/dict/en.txt?x=1#frag", "en.txt", "https://example.com/dict/"},
		{"s3://bucket/deep/key.txt", "key.txt", "s3://bucket/deep/"},
		{"https://example.com/with%20space.txt", "with space.txt", "https://example.com/"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.base, URLBasename(u), "basename %s", tt.in)
		assert.Equal(t, tt.dir, URLDirname(u).String(), "dirname %s", tt.in)
	}
}
