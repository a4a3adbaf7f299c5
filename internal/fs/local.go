package fs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

// LocalIO implements CSpellIO using the local filesystem. It accepts native
// paths and file URLs; relative paths resolve against its root.
type LocalIO struct {
	resolver
	log *slog.Logger
}

// NewLocalIO creates a LocalIO rooted at the given directory. An empty root
// means the process working directory.
func NewLocalIO(root string, opts ...Option) *LocalIO {
	if root != "" {
		opts = append([]Option{WithCwd(root)}, opts...)
	}
	s := newSettings(opts)
	return &LocalIO{resolver: resolver{cwd: s.cwd}, log: s.log.With("backend", "local")}
}

// Root returns the directory relative paths resolve against.
func (l *LocalIO) Root() string {
	return l.cwd
}

func (l *LocalIO) abs(op string, addr Address) (string, *url.URL, error) {
	u, err := l.toURL(addr)
	if err != nil {
		return "", nil, withOp(op, err)
	}
	p, err := FilePath(u)
	if err != nil {
		return "", nil, withOp(op, err)
	}
	return p, u, nil
}

// ReadFile reads and decodes the resource at addr.
func (l *LocalIO) ReadFile(ctx context.Context, addr Address) (TextFileResource, error) {
	if err := live(ctx); err != nil {
		return TextFileResource{}, err
	}
	return l.read(OpReadFile, addr)
}

// ReadFileSync is ReadFile without a context.
func (l *LocalIO) ReadFileSync(addr Address) (TextFileResource, error) {
	return l.read(OpReadFileSync, addr)
}

func (l *LocalIO) read(op string, addr Address) (TextFileResource, error) {
	p, u, err := l.abs(op, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return TextFileResource{}, hostError(op, u.String(), err)
	}
	if info.IsDir() {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: fmt.Errorf("is a directory")}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return TextFileResource{}, hostError(op, u.String(), err)
	}
	res, err := newResource(u, data, StatsOf(info))
	if err != nil {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	l.log.Debug("read", "path", p, "size", info.Size())
	return res, nil
}

// WriteFile writes content to addr, creating parent directories. The file is
// replaced by rename so readers never observe a partial write.
func (l *LocalIO) WriteFile(ctx context.Context, addr Address, content string) error {
	if err := live(ctx); err != nil {
		return err
	}
	p, u, err := l.abs(OpWriteFile, addr)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return hostError(OpWriteFile, u.String(), err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return hostError(OpWriteFile, u.String(), err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return hostError(OpWriteFile, u.String(), err)
	}
	if err := tmp.Close(); err != nil {
		return hostError(OpWriteFile, u.String(), err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(p); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return hostError(OpWriteFile, u.String(), err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return hostError(OpWriteFile, u.String(), err)
	}
	l.log.Debug("write", "path", p, "size", len(content))
	return nil
}

// GetStat returns metadata for addr without reading it.
func (l *LocalIO) GetStat(ctx context.Context, addr Address) (Stats, error) {
	if err := live(ctx); err != nil {
		return Stats{}, err
	}
	return l.stat(OpGetStat, addr)
}

// GetStatSync is GetStat without a context.
func (l *LocalIO) GetStatSync(addr Address) (Stats, error) {
	return l.stat(OpGetStatSync, addr)
}

func (l *LocalIO) stat(op string, addr Address) (Stats, error) {
	p, u, err := l.abs(op, addr)
	if err != nil {
		return Stats{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return Stats{}, hostError(op, u.String(), err)
	}
	return StatsOf(info), nil
}

// CompareStats delegates to the shared comparator.
func (l *LocalIO) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

// ToURL normalizes addr into a URL.
func (l *LocalIO) ToURL(addr Address) (*url.URL, error) {
	return l.toURL(addr)
}

// URIBasename returns the final segment of addr.
func (l *LocalIO) URIBasename(addr Address) (string, error) {
	return l.basename(addr)
}

// URIDirname returns the parent of addr.
func (l *LocalIO) URIDirname(addr Address) (*url.URL, error) {
	return l.dirname(addr)
}
