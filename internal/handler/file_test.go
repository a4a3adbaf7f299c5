package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mfs "github.com/CageChen/cspellio/internal/fs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestFileHandler_RoundTrip(t *testing.T) {
	r := NewRouter(mfs.NewMemoryIO(), nil)

	w := do(t, r, http.MethodPut, "/api/files/docs/readme.md", "# Guide\n\nSome `code` and prose.\n")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/files/docs/readme.md", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	file := decode[FileResponse](t, w)
	assert.Equal(t, "file:///docs/readme.md", file.URL)
	assert.Equal(t, mfs.EncodingUTF8, file.Encoding)
	assert.True(t, strings.HasPrefix(file.Content, "# Guide"))
	assert.EqualValues(t, len(file.Content), file.Stats.Size)

	w = do(t, r, http.MethodGet, "/api/stat/docs/readme.md", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[mfs.Stats](t, w)
	assert.Equal(t, mfs.KindFile, st.Kind)
	assert.Equal(t, file.Stats.Size, st.Size)

	w = do(t, r, http.MethodGet, "/api/url/docs/readme.md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, URLResponse{
		URL:      "file:///docs/readme.md",
		Basename: "readme.md",
		Dirname:  "file:///docs/",
	}, decode[URLResponse](t, w))

	w = do(t, r, http.MethodGet, "/api/text/docs/readme.md", "")
	require.Equal(t, http.StatusOK, w.Code)
	text := decode[TextResponse](t, w)
	assert.Equal(t, "Guide", text.Title)
	require.Len(t, text.Segments, 2)
	assert.NotContains(t, text.Segments[1].Text, "code")
}

func TestFileHandler_PlainText(t *testing.T) {
	r := NewRouter(mfs.NewMemoryIO(), nil)
	require.Equal(t, http.StatusNoContent, do(t, r, http.MethodPut, "/api/files/words.txt", "alpha\n\nbeta\n").Code)

	w := do(t, r, http.MethodGet, "/api/text/words.txt", "")
	require.Equal(t, http.StatusOK, w.Code)
	text := decode[TextResponse](t, w)
	require.Len(t, text.Segments, 2)
	assert.Equal(t, 3, text.Segments[1].Line)
}

func TestFileHandler_Errors(t *testing.T) {
	r := NewRouter(mfs.NewMemoryIO(), nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"missing file", http.MethodGet, "/api/files/nope.txt", "", http.StatusNotFound},
		{"missing stat", http.MethodGet, "/api/stat/nope.txt", "", http.StatusNotFound},
		{"traversal", http.MethodGet, "/api/files/a/../secret.txt", "", http.StatusForbidden},
		{"url in path", http.MethodGet, "/api/files/https:/x.txt", "", http.StatusForbidden},
		{"absolute path get", http.MethodGet, "/api/files//etc/passwd", "", http.StatusForbidden},
		{"absolute path put", http.MethodPut, "/api/files//etc/passwd", "x", http.StatusForbidden},
		{"absolute stat", http.MethodGet, "/api/stat//etc/passwd", "", http.StatusForbidden},
		{"backslash path", http.MethodGet, "/api/files/%5Cetc%5Cpasswd", "", http.StatusForbidden},
		{"file url query", http.MethodGet, "/api/files/x?url=file:///etc/passwd", "", http.StatusForbidden},
		{"unsupported scheme", http.MethodGet, "/api/stat/x?url=s3://bucket/key", "", http.StatusBadRequest},
		{"bad compare body", http.MethodPost, "/api/compare", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestFileHandler_StaysInRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep"), 0o644))
	r := NewRouter(mfs.NewLocalIO(root), nil)

	w := do(t, r, http.MethodGet, "/api/files/"+filepath.ToSlash(secret), "")
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "keep")

	w = do(t, r, http.MethodPut, "/api/files/"+filepath.ToSlash(secret), "overwritten")
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, "/api/files/"+filepath.ToSlash(filepath.Join(outside, "planted.txt")), "x")
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	data, err := os.ReadFile(secret)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
	assert.NoFileExists(t, filepath.Join(outside, "planted.txt"))
}

func TestFileHandler_NotImplemented(t *testing.T) {
	r := NewRouter(mfs.NewWebIO(), nil)

	tests := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodGet, "/api/files/a.txt", mfs.OpReadFile},
		{http.MethodPut, "/api/files/a.txt", mfs.OpWriteFile},
		{http.MethodGet, "/api/stat/a.txt", mfs.OpGetStat},
		{http.MethodGet, "/api/url/a.txt", mfs.OpToURL},
		{http.MethodGet, "/api/text/a.txt", mfs.OpReadFile},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := do(t, r, tt.method, tt.target, "x")
			require.Equal(t, http.StatusNotImplemented, w.Code)
			body := decode[map[string]string](t, w)
			assert.Equal(t, tt.want, body["method"])
			assert.Equal(t, mfs.ErrNotImplemented.Error(), body["kind"])
		})
	}
}

func TestFileHandler_Compare(t *testing.T) {
	// Comparison works even on the restricted backend.
	r := NewRouter(mfs.NewWebIO(), nil)

	older := mfs.Stats{Size: 10, ModTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := mfs.Stats{Size: 10, ModTime: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	body, err := json.Marshal(CompareRequest{Left: older, Right: newer})
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/api/compare", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"result": -1}, decode[map[string]int](t, w))

	body, err = json.Marshal(CompareRequest{Left: newer, Right: newer})
	require.NoError(t, err)
	w = do(t, r, http.MethodPost, "/api/compare", string(body))
	assert.Equal(t, map[string]int{"result": 0}, decode[map[string]int](t, w))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(&mfs.OpError{Op: mfs.OpReadFile, Kind: mfs.ErrIO}))
	assert.Equal(t, http.StatusBadRequest, statusOf(&mfs.OpError{Op: mfs.OpToURL, Kind: mfs.ErrUnsupportedScheme}))
	assert.Equal(t, http.StatusForbidden, statusOf(&mfs.OpError{Op: mfs.OpWriteFile, Kind: mfs.ErrPermission}))
}

func TestCORSPreflight(t *testing.T) {
	r := NewRouter(mfs.NewMemoryIO(), nil)
	w := do(t, r, http.MethodOptions, "/api/files/a.txt", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
