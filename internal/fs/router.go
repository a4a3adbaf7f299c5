package fs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
)

// Router dispatches each call to the backend registered for the address's
// URL scheme. It never retries or falls back after a failure; an address
// whose scheme has no backend goes to the default backend, if any.
type Router struct {
	resolver
	backends map[string]CSpellIO
	fallback CSpellIO
	log      *slog.Logger
}

// NewRouter creates an empty Router. Paths resolve against the process
// working directory unless WithCwd is given.
func NewRouter(opts ...Option) *Router {
	s := newSettings(opts)
	return &Router{
		resolver: resolver{cwd: s.cwd},
		backends: make(map[string]CSpellIO),
		log:      s.log.With("backend", "router"),
	}
}

// Handle registers backend for the given URL schemes.
func (r *Router) Handle(backend CSpellIO, schemes ...string) *Router {
	for _, s := range schemes {
		r.backends[strings.ToLower(s)] = backend
	}
	return r
}

// Default sets the backend used for schemes without a registration.
func (r *Router) Default(backend CSpellIO) *Router {
	r.fallback = backend
	return r
}

// Schemes returns the registered schemes in sorted order.
func (r *Router) Schemes() []string {
	out := make([]string, 0, len(r.backends))
	for s := range r.backends {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (r *Router) route(op string, addr Address) (CSpellIO, URL, error) {
	u, err := r.toURL(addr)
	if err != nil {
		return nil, URL{}, withOp(op, err)
	}
	b, ok := r.backends[strings.ToLower(u.Scheme)]
	if !ok {
		b = r.fallback
	}
	if b == nil {
		return nil, URL{}, &OpError{Op: op, URL: u.String(), Kind: ErrUnsupportedScheme, Err: fmt.Errorf("no backend for scheme %q", u.Scheme)}
	}
	r.log.Debug("route", "op", op, "scheme", u.Scheme)
	return b, AddressOf(u), nil
}

func (r *Router) ReadFile(ctx context.Context, addr Address) (TextFileResource, error) {
	b, u, err := r.route(OpReadFile, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	return b.ReadFile(ctx, u)
}

func (r *Router) ReadFileSync(addr Address) (TextFileResource, error) {
	b, u, err := r.route(OpReadFileSync, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	return b.ReadFileSync(u)
}

func (r *Router) WriteFile(ctx context.Context, addr Address, content string) error {
	b, u, err := r.route(OpWriteFile, addr)
	if err != nil {
		return err
	}
	return b.WriteFile(ctx, u, content)
}

func (r *Router) GetStat(ctx context.Context, addr Address) (Stats, error) {
	b, u, err := r.route(OpGetStat, addr)
	if err != nil {
		return Stats{}, err
	}
	return b.GetStat(ctx, u)
}

func (r *Router) GetStatSync(addr Address) (Stats, error) {
	b, u, err := r.route(OpGetStatSync, addr)
	if err != nil {
		return Stats{}, err
	}
	return b.GetStatSync(u)
}

// CompareStats delegates to the shared comparator.
func (r *Router) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

func (r *Router) ToURL(addr Address) (*url.URL, error) {
	b, u, err := r.route(OpToURL, addr)
	if err != nil {
		return nil, err
	}
	return b.ToURL(u)
}

func (r *Router) URIBasename(addr Address) (string, error) {
	b, u, err := r.route(OpURIBasename, addr)
	if err != nil {
		return "", err
	}
	return b.URIBasename(u)
}

func (r *Router) URIDirname(addr Address) (*url.URL, error) {
	b, u, err := r.route(OpURIDirname, addr)
	if err != nil {
		return nil, err
	}
	return b.URIDirname(u)
}
