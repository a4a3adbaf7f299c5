// Package handler provides HTTP handlers for the cspellio REST API.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	mfs "github.com/CageChen/cspellio/internal/fs"
	"github.com/CageChen/cspellio/internal/markdown"
	"github.com/gin-gonic/gin"
)

// maxBody bounds PUT request bodies.
const maxBody = 32 << 20

// FileResponse represents the response for a file request
type FileResponse struct {
	URL      string    `json:"url"`
	Content  string    `json:"content"`
	Encoding string    `json:"encoding"`
	Stats    mfs.Stats `json:"stats"`
}

// URLResponse describes how an address normalizes.
type URLResponse struct {
	URL      string `json:"url"`
	Basename string `json:"basename"`
	Dirname  string `json:"dirname"`
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	Left  mfs.Stats `json:"left"`
	Right mfs.Stats `json:"right"`
}

// TextResponse lists the prose of a resource for spell checking.
type TextResponse struct {
	URL      string             `json:"url"`
	Title    string             `json:"title,omitempty"`
	TOC      []markdown.TOCItem `json:"toc,omitempty"`
	Segments []markdown.Segment `json:"segments"`
}

// FileHandler serves the CSpellIO operations over HTTP
type FileHandler struct {
	io     mfs.CSpellIO
	parser *markdown.Parser
	log    *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(backend mfs.CSpellIO, log *slog.Logger) *FileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FileHandler{
		io:     backend,
		parser: markdown.NewParser(),
		log:    log,
	}
}

var errBadPath = errors.New("invalid path")

// address picks the address a request names. The path parameter is always
// relative to the backend root; absolute URLs for remote schemes are passed
// through the url query.
func address(c *gin.Context) (mfs.Address, error) {
	if raw := c.Query("url"); raw != "" {
		if !mfs.IsURLLike(raw) || strings.HasPrefix(strings.ToLower(raw), "file:") {
			return nil, errBadPath
		}
		return mfs.Path(raw), nil
	}

	filePath := strings.TrimPrefix(c.Param("path"), "/")
	// Security: prevent path traversal and escapes to absolute paths
	if filePath == "" || strings.Contains(filePath, "..") || mfs.IsURLLike(filePath) ||
		strings.HasPrefix(filePath, "/") || strings.HasPrefix(filePath, `\`) ||
		path.IsAbs(filePath) || filepath.IsAbs(filePath) || filepath.VolumeName(filePath) != "" {
		return nil, errBadPath
	}
	return mfs.Path(filePath), nil
}

// statusOf maps an error onto an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadPath):
		return http.StatusForbidden
	case errors.Is(err, mfs.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, mfs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mfs.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, mfs.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *FileHandler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"error": err.Error()}
	if kind := mfs.KindOf(err); kind != nil {
		body["kind"] = kind.Error()
	}
	var nie *mfs.NotImplementedError
	if errors.As(err, &nie) {
		body["method"] = nie.Method
	}
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, body)
}

// GetFile returns the decoded resource
func (h *FileHandler) GetFile(c *gin.Context) {
	addr, err := address(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.io.ReadFile(c.Request.Context(), addr)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, FileResponse{
		URL:      res.URL.String(),
		Content:  res.Content,
		Encoding: res.Encoding,
		Stats:    res.Stats,
	})
}

// PutFile stores the request body as the resource text
func (h *FileHandler) PutFile(c *gin.Context) {
	addr, err := address(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := h.io.WriteFile(c.Request.Context(), addr, string(body)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStat returns resource metadata
func (h *FileHandler) GetStat(c *gin.Context) {
	addr, err := address(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	st, err := h.io.GetStat(c.Request.Context(), addr)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetURL returns the normalized URL with its basename and dirname
func (h *FileHandler) GetURL(c *gin.Context) {
	addr, err := address(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.io.ToURL(addr)
	if err != nil {
		h.fail(c, err)
		return
	}
	base, err := h.io.URIBasename(addr)
	if err != nil {
		h.fail(c, err)
		return
	}
	dir, err := h.io.URIDirname(addr)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, URLResponse{URL: u.String(), Basename: base, Dirname: dir.String()})
}

// Compare orders two stats snapshots
func (h *FileHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": h.io.CompareStats(req.Left, req.Right)})
}

// GetText returns the prose segments of a resource. Markdown is parsed;
// anything else is split into lines.
func (h *FileHandler) GetText(c *gin.Context) {
	addr, err := address(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.io.ReadFile(c.Request.Context(), addr)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := TextResponse{URL: res.URL.String()}
	if markdown.IsMarkdown(strings.TrimSuffix(res.Basename(), ".gz")) {
		result, err := h.parser.Parse([]byte(res.Content))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to parse markdown: " + err.Error(),
			})
			return
		}
		resp.Title = result.Title
		resp.TOC = result.TOC
		resp.Segments = result.Segments
	} else {
		resp.Segments = markdown.PlainSegments(res.Content)
	}
	if resp.Segments == nil {
		resp.Segments = []markdown.Segment{}
	}
	c.JSON(http.StatusOK, resp)
}
