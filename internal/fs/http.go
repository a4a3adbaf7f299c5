package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds a single request made by HTTPIO.
const DefaultHTTPTimeout = 30 * time.Second

// maxHTTPBody caps how much of a response body is read.
const maxHTTPBody = 64 << 20

// HTTPIO implements CSpellIO for http and https URLs. It is read-only.
type HTTPIO struct {
	client *http.Client
	log    *slog.Logger
	limit  int64
}

// NewHTTPIO creates an HTTPIO. A nil client gets DefaultHTTPTimeout.
func NewHTTPIO(client *http.Client, opts ...Option) *HTTPIO {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	s := newSettings(opts)
	return &HTTPIO{client: client, log: s.log.With("backend", "http"), limit: maxHTTPBody}
}

func (h *HTTPIO) toURL(addr Address) (*url.URL, error) {
	u, err := ToURL(addr, "/")
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &OpError{Op: OpToURL, URL: u.String(), Kind: ErrUnsupportedScheme, Err: fmt.Errorf("scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &OpError{Op: OpToURL, URL: u.String(), Kind: ErrInvalidAddress, Err: fmt.Errorf("missing host")}
	}
	return u, nil
}

func (h *HTTPIO) do(ctx context.Context, op, method string, addr Address) (*http.Response, *url.URL, error) {
	u, err := h.toURL(addr)
	if err != nil {
		return nil, nil, withOp(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, nil, &OpError{Op: op, URL: u.String(), Kind: ErrInvalidAddress, Err: err}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, nil, &OpError{Op: op, URL: u.String(), Kind: statusKind(resp.StatusCode), Err: fmt.Errorf("http status %s", resp.Status)}
	}
	return resp, u, nil
}

func statusKind(code int) error {
	switch code {
	case http.StatusNotFound, http.StatusGone:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPermission
	default:
		return ErrIO
	}
}

func headerStats(resp *http.Response, size int64) Stats {
	st := Stats{
		Size: size,
		Kind: KindFile,
		ETag: strings.Trim(strings.TrimPrefix(resp.Header.Get("ETag"), "W/"), `"`),
	}
	if st.Size < 0 {
		st.Size = resp.ContentLength
	}
	if st.Size < 0 {
		if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
			st.Size = n
		} else {
			st.Size = 0
		}
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			st.ModTime = t
		}
	}
	return st
}

// ReadFile fetches and decodes the resource at addr.
func (h *HTTPIO) ReadFile(ctx context.Context, addr Address) (TextFileResource, error) {
	if err := live(ctx); err != nil {
		return TextFileResource{}, err
	}
	return h.read(ctx, OpReadFile, addr)
}

// ReadFileSync is ReadFile without a context.
func (h *HTTPIO) ReadFileSync(addr Address) (TextFileResource, error) {
	return h.read(context.Background(), OpReadFileSync, addr)
}

func (h *HTTPIO) read(ctx context.Context, op string, addr Address) (TextFileResource, error) {
	resp, u, err := h.do(ctx, op, http.MethodGet, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	tooLarge := &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: fmt.Errorf("body exceeds %d bytes", h.limit)}
	if resp.ContentLength > h.limit {
		return TextFileResource{}, tooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.limit+1))
	if err != nil {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	if int64(len(data)) > h.limit {
		return TextFileResource{}, tooLarge
	}
	res, err := newResource(u, data, headerStats(resp, int64(len(data))))
	if err != nil {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	h.log.Debug("read", "url", u.String(), "size", len(data))
	return res, nil
}

// WriteFile is not supported over HTTP.
func (h *HTTPIO) WriteFile(context.Context, Address, string) error {
	return notImplemented(OpWriteFile)
}

// GetStat issues a HEAD request for addr.
func (h *HTTPIO) GetStat(ctx context.Context, addr Address) (Stats, error) {
	if err := live(ctx); err != nil {
		return Stats{}, err
	}
	return h.stat(ctx, OpGetStat, addr)
}

// GetStatSync is GetStat without a context.
func (h *HTTPIO) GetStatSync(addr Address) (Stats, error) {
	return h.stat(context.Background(), OpGetStatSync, addr)
}

func (h *HTTPIO) stat(ctx context.Context, op string, addr Address) (Stats, error) {
	resp, _, err := h.do(ctx, op, http.MethodHead, addr)
	if err != nil {
		return Stats{}, err
	}
	_ = resp.Body.Close()
	return headerStats(resp, -1), nil
}

// CompareStats delegates to the shared comparator.
func (h *HTTPIO) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

// ToURL normalizes addr into an http(s) URL.
func (h *HTTPIO) ToURL(addr Address) (*url.URL, error) {
	return h.toURL(addr)
}

// URIBasename returns the final segment of addr.
func (h *HTTPIO) URIBasename(addr Address) (string, error) {
	u, err := h.toURL(addr)
	if err != nil {
		return "", withOp(OpURIBasename, err)
	}
	return URLBasename(u), nil
}

// URIDirname returns the parent of addr.
func (h *HTTPIO) URIDirname(addr Address) (*url.URL, error) {
	u, err := h.toURL(addr)
	if err != nil {
		return nil, withOp(OpURIDirname, err)
	}
	return URLDirname(u), nil
}
