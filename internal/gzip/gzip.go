// Package gzip compresses the files matched by glob patterns, writing a
// <file>.gz next to each one so that the fs backends can read them back
// transparently.
package gzip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	kgzip "github.com/klauspost/compress/gzip"
)

// Ext is appended to every compressed file name.
const Ext = ".gz"

// Options tunes Compress. The zero value is usable.
type Options struct {
	// Level is a klauspost/compress gzip level; 0 means BestCompression.
	Level  int
	Logger *slog.Logger
}

func (o Options) level() int {
	if o.Level == 0 {
		return kgzip.BestCompression
	}
	return o.Level
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Match returns the regular files under root whose slash separated relative
// path matches any of globs. `*` stays within one directory, `**` crosses
// directories. Files already ending in .gz are never matched.
func Match(root string, globs []string) ([]string, error) {
	matchers := make([]glob.Glob, 0, len(globs))
	for _, pattern := range globs {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("gzip: bad pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || strings.HasSuffix(d.Name(), Ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, g := range matchers {
			if g.Match(rel) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gzip: walk %s: %w", root, err)
	}
	return files, nil
}

// Compress gzips every file Match finds and returns the written .gz paths.
// It stops at the first failure or when ctx is done.
func Compress(ctx context.Context, root string, globs []string, opts Options) ([]string, error) {
	files, err := Match(root, globs)
	if err != nil {
		return nil, err
	}
	log := opts.logger()

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		out, err := CompressFile(f, opts.level())
		if err != nil {
			return written, err
		}
		log.Debug("compressed", "file", f, "target", out)
		written = append(written, out)
	}
	return written, nil
}

// CompressFile writes name+".gz" at the given level and returns its path.
// The target is replaced atomically.
func CompressFile(name string, level int) (target string, err error) {
	src, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("gzip: open %s: %w", name, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("gzip: stat %s: %w", name, err)
	}

	target = name + Ext
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("gzip: create temp for %s: %w", target, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	zw, err := kgzip.NewWriterLevel(tmp, level)
	if err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("gzip: level %d: %w", level, err)
	}
	zw.Name = filepath.Base(name)
	zw.ModTime = info.ModTime()

	if _, err = io.Copy(zw, src); err != nil {
		_ = zw.Close()
		_ = tmp.Close()
		return "", fmt.Errorf("gzip: compress %s: %w", name, err)
	}
	if err = errors.Join(zw.Close(), tmp.Close()); err != nil {
		return "", fmt.Errorf("gzip: finish %s: %w", target, err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("gzip: rename %s: %w", target, err)
	}
	return target, nil
}
