package fs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// BillyIO implements CSpellIO on top of a go-billy filesystem. File URLs and
// absolute paths address the billy root; relative paths resolve against "/"
// unless WithCwd says otherwise.
type BillyIO struct {
	resolver
	fs  billy.Filesystem
	log *slog.Logger
}

// NewBillyIO creates a BillyIO over fsys.
func NewBillyIO(fsys billy.Filesystem, opts ...Option) *BillyIO {
	s := newSettings(append([]Option{WithCwd(string(filepath.Separator))}, opts...))
	return &BillyIO{
		resolver: resolver{cwd: s.cwd},
		fs:       fsys,
		log:      s.log.With("backend", "billy"),
	}
}

// NewMemoryIO creates a BillyIO backed by an empty in-memory filesystem.
func NewMemoryIO(opts ...Option) *BillyIO {
	return NewBillyIO(memfs.New(), opts...)
}

// NewChrootIO creates a BillyIO confined to the host directory root.
func NewChrootIO(root string, opts ...Option) *BillyIO {
	return NewBillyIO(osfs.New(root, osfs.WithBoundOS()), opts...)
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // exposes the adapter target.
func (b *BillyIO) Raw() billy.Filesystem {
	return b.fs
}

func (b *BillyIO) name(op string, addr Address) (string, *url.URL, error) {
	u, err := b.toURL(addr)
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
func (b *BillyIO) ReadFile(ctx context.Context, addr Address) (TextFileResource, error) {
	if err := live(ctx); err != nil {
		return TextFileResource{}, err
	}
	return b.read(OpReadFile, addr)
}

// ReadFileSync is ReadFile without a context.
func (b *BillyIO) ReadFileSync(addr Address) (TextFileResource, error) {
	return b.read(OpReadFileSync, addr)
}

func (b *BillyIO) read(op string, addr Address) (TextFileResource, error) {
	p, u, err := b.name(op, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	info, err := b.fs.Stat(p)
	if err != nil {
		return TextFileResource{}, hostError(op, u.String(), fmt.Errorf("billy: stat %q: %w", p, err))
	}
	if info.IsDir() {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: fmt.Errorf("is a directory")}
	}
	data, err := util.ReadFile(b.fs, p)
	if err != nil {
		return TextFileResource{}, hostError(op, u.String(), fmt.Errorf("billy: readfile %q: %w", p, err))
	}
	res, err := newResource(u, data, StatsOf(info))
	if err != nil {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	b.log.Debug("read", "path", p, "size", info.Size())
	return res, nil
}

// WriteFile writes content to addr, creating parent directories.
func (b *BillyIO) WriteFile(ctx context.Context, addr Address, content string) error {
	if err := live(ctx); err != nil {
		return err
	}
	p, u, err := b.name(OpWriteFile, addr)
	if err != nil {
		return err
	}
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return hostError(OpWriteFile, u.String(), fmt.Errorf("billy: mkdirall %q: %w", filepath.Dir(p), err))
	}
	if err := util.WriteFile(b.fs, p, []byte(content), 0o644); err != nil {
		return hostError(OpWriteFile, u.String(), fmt.Errorf("billy: writefile %q: %w", p, err))
	}
	b.log.Debug("write", "path", p, "size", len(content))
	return nil
}

// GetStat returns metadata for addr.
func (b *BillyIO) GetStat(ctx context.Context, addr Address) (Stats, error) {
	if err := live(ctx); err != nil {
		return Stats{}, err
	}
	return b.stat(OpGetStat, addr)
}

// GetStatSync is GetStat without a context.
func (b *BillyIO) GetStatSync(addr Address) (Stats, error) {
	return b.stat(OpGetStatSync, addr)
}

func (b *BillyIO) stat(op string, addr Address) (Stats, error) {
	p, u, err := b.name(op, addr)
	if err != nil {
		return Stats{}, err
	}
	info, err := b.fs.Stat(p)
	if err != nil {
		return Stats{}, hostError(op, u.String(), fmt.Errorf("billy: stat %q: %w", p, err))
	}
	return StatsOf(info), nil
}

// CompareStats delegates to the shared comparator.
func (b *BillyIO) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

// ToURL normalizes addr into a URL.
func (b *BillyIO) ToURL(addr Address) (*url.URL, error) {
	return b.toURL(addr)
}

// URIBasename returns the final segment of addr.
func (b *BillyIO) URIBasename(addr Address) (string, error) {
	return b.basename(addr)
}

// URIDirname returns the parent of addr.
func (b *BillyIO) URIDirname(addr Address) (*url.URL, error) {
	return b.dirname(addr)
}
