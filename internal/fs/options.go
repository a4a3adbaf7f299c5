package fs

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

type settings struct {
	log *slog.Logger
	cwd string
}

// Option configures a backend.
type Option func(*settings)

// WithLogger sets the logger backends report operations to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCwd sets the directory relative paths resolve against.
func WithCwd(dir string) Option {
	return func(s *settings) {
		s.cwd = dir
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(&s)
	}
	if s.cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			s.cwd = wd
		} else {
			s.cwd = string(filepath.Separator)
		}
	}
	if abs, err := filepath.Abs(s.cwd); err == nil {
		s.cwd = abs
	}
	return s
}

// resolver implements the address half of the contract for backends that
// resolve paths against a working directory.
type resolver struct {
	cwd string
}

func (r resolver) toURL(addr Address) (*url.URL, error) {
	return ToURL(addr, r.cwd)
}

func (r resolver) basename(addr Address) (string, error) {
	u, err := r.toURL(addr)
	if err != nil {
		return "", withOp(OpURIBasename, err)
	}
	return URLBasename(u), nil
}

func (r resolver) dirname(addr Address) (*url.URL, error) {
	u, err := r.toURL(addr)
	if err != nil {
		return nil, withOp(OpURIDirname, err)
	}
	return URLDirname(u), nil
}
