package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GitIO implements CSpellIO by reading from a git ref (branch, tag, or
// commit). Addresses are paths or file URLs inside the repository working
// tree. It is read-only: WriteFile is not implemented.
type GitIO struct {
	resolver
	repoPath string
	ref      string
	log      *slog.Logger
}

// NewGitIO creates a GitIO that reads files from the given ref in the
// repository at repoPath. Relative paths resolve against the repository root.
func NewGitIO(repoPath, ref string, opts ...Option) *GitIO {
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	if ref == "" {
		ref = "HEAD"
	}
	s := newSettings(append([]Option{WithCwd(repoPath)}, opts...))
	return &GitIO{
		resolver: resolver{cwd: s.cwd},
		repoPath: repoPath,
		ref:      ref,
		log:      s.log.With("backend", "git", "ref", ref),
	}
}

// Ref returns the ref resources are read from.
func (g *GitIO) Ref() string {
	return g.ref
}

func (g *GitIO) git(ctx context.Context, args ...string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.repoPath}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

// objectPath maps addr onto a slash-separated path inside the tree.
func (g *GitIO) objectPath(op string, addr Address) (string, *url.URL, error) {
	u, err := g.toURL(addr)
	if err != nil {
		return "", nil, withOp(op, err)
	}
	p, err := FilePath(u)
	if err != nil {
		return "", nil, withOp(op, err)
	}
	rel, err := filepath.Rel(g.repoPath, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", nil, &OpError{Op: op, URL: u.String(), Kind: ErrInvalidAddress, Err: fmt.Errorf("outside repository %s", g.repoPath)}
	}
	return filepath.ToSlash(rel), u, nil
}

// ReadFile reads the resource at addr from the ref.
func (g *GitIO) ReadFile(ctx context.Context, addr Address) (TextFileResource, error) {
	if err := live(ctx); err != nil {
		return TextFileResource{}, err
	}
	return g.read(ctx, OpReadFile, addr)
}

// ReadFileSync is ReadFile without a context.
func (g *GitIO) ReadFileSync(addr Address) (TextFileResource, error) {
	return g.read(context.Background(), OpReadFileSync, addr)
}

func (g *GitIO) read(ctx context.Context, op string, addr Address) (TextFileResource, error) {
	objPath, u, err := g.objectPath(op, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	if objPath == "." {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: fmt.Errorf("cannot read directory as file")}
	}
	st, err := g.stat(ctx, op, objPath, u)
	if err != nil {
		return TextFileResource{}, err
	}
	if st.Kind == KindDirectory {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: fmt.Errorf("cannot read directory as file")}
	}
	out, err := g.git(ctx, "show", g.ref+":"+objPath)
	if err != nil {
		return TextFileResource{}, g.mapError(op, u, err)
	}
	res, err := newResource(u, out, st)
	if err != nil {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	g.log.Debug("read", "path", objPath, "size", st.Size)
	return res, nil
}

// WriteFile is not supported on a git ref.
func (g *GitIO) WriteFile(context.Context, Address, string) error {
	return notImplemented(OpWriteFile)
}

// GetStat returns metadata for addr at the ref. ModTime is the commit time of
// the last change to the path.
func (g *GitIO) GetStat(ctx context.Context, addr Address) (Stats, error) {
	if err := live(ctx); err != nil {
		return Stats{}, err
	}
	objPath, u, err := g.objectPath(OpGetStat, addr)
	if err != nil {
		return Stats{}, err
	}
	return g.stat(ctx, OpGetStat, objPath, u)
}

// GetStatSync is GetStat without a context.
func (g *GitIO) GetStatSync(addr Address) (Stats, error) {
	objPath, u, err := g.objectPath(OpGetStatSync, addr)
	if err != nil {
		return Stats{}, err
	}
	return g.stat(context.Background(), OpGetStatSync, objPath, u)
}

func (g *GitIO) stat(ctx context.Context, op, objPath string, u *url.URL) (Stats, error) {
	// For root, check if the ref exists at all
	if objPath == "." {
		if _, err := g.git(ctx, "rev-parse", "--verify", g.ref); err != nil {
			return Stats{}, &OpError{Op: op, URL: u.String(), Kind: ErrNotFound, Err: err}
		}
		return Stats{Kind: KindDirectory, ModTime: g.modTime(ctx, ".")}, nil
	}

	out, err := g.git(ctx, "ls-tree", g.ref, objPath)
	if err != nil {
		return Stats{}, g.mapError(op, u, err)
	}
	line := strings.TrimSpace(string(out))
	if line == "" {
		// Maybe a directory: retry with a trailing slash
		out, err = g.git(ctx, "ls-tree", g.ref, objPath+"/")
		if err != nil || strings.TrimSpace(string(out)) == "" {
			return Stats{}, &OpError{Op: op, URL: u.String(), Kind: ErrNotFound, Err: os.ErrNotExist}
		}
		return Stats{Kind: KindDirectory, ModTime: g.modTime(ctx, objPath)}, nil
	}

	// Parse ls-tree output: "<mode> <type> <hash>\t<name>"
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Stats{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: fmt.Errorf("unexpected ls-tree output %q", line)}
	}
	st := Stats{ModTime: g.modTime(ctx, objPath), ETag: fields[2]}
	switch fields[1] {
	case "tree":
		st.Kind = KindDirectory
		return st, nil
	case "blob":
		st.Kind = KindFile
		if fields[0] == "120000" {
			st.Kind = KindSymlink
		}
	default:
		st.Kind = KindOther
	}

	sizeOut, err := g.git(ctx, "cat-file", "-s", g.ref+":"+objPath)
	if err != nil {
		return Stats{}, g.mapError(op, u, err)
	}
	st.Size, err = strconv.ParseInt(strings.TrimSpace(string(sizeOut)), 10, 64)
	if err != nil {
		return Stats{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	return st, nil
}

func (g *GitIO) modTime(ctx context.Context, path string) time.Time {
	args := []string{"log", "-1", "--format=%ct", g.ref}
	if path != "." && path != "" {
		args = append(args, "--", path)
	}
	out, err := g.git(ctx, args...)
	if err != nil {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func (g *GitIO) mapError(op string, u *url.URL, err error) error {
	msg := err.Error()
	kind := ErrIO
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "not exist") ||
		strings.Contains(msg, "Not a valid object name") || strings.Contains(msg, "invalid object name") {
		kind = ErrNotFound
	}
	return &OpError{Op: op, URL: u.String(), Kind: kind, Err: err}
}

// CompareStats delegates to the shared comparator.
func (g *GitIO) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

// ToURL normalizes addr into a URL.
func (g *GitIO) ToURL(addr Address) (*url.URL, error) {
	return g.toURL(addr)
}

// URIBasename returns the final segment of addr.
func (g *GitIO) URIBasename(addr Address) (string, error) {
	return g.basename(addr)
}

// URIDirname returns the parent of addr.
func (g *GitIO) URIDirname(addr Address) (*url.URL, error) {
	return g.dirname(addr)
}
