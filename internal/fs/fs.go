// Package fs provides a text file I/O contract with interchangeable backends
// for local disk, git refs, in-memory trees, object storage and HTTP, plus a
// restricted backend for hosts without file access.
package fs

import (
	"context"
	"net/url"
)

// CSpellIO abstracts reading, writing and stat-ing text resources so callers
// can work with any backend. Operations taking a context may block; the Sync
// variants are for call sites that cannot carry one.
//
// A backend that cannot perform an operation returns a *NotImplementedError
// naming it. CompareStats is the shared comparator on every backend.
type CSpellIO interface {
	ReadFile(ctx context.Context, addr Address) (TextFileResource, error)
	ReadFileSync(addr Address) (TextFileResource, error)
	WriteFile(ctx context.Context, addr Address, content string) error
	GetStat(ctx context.Context, addr Address) (Stats, error)
	GetStatSync(addr Address) (Stats, error)
	CompareStats(left, right Stats) int
	ToURL(addr Address) (*url.URL, error)
	URIBasename(addr Address) (string, error)
	URIDirname(addr Address) (*url.URL, error)
}

// Operation names carried by NotImplementedError.
const (
	OpReadFile     = "readFile"
	OpReadFileSync = "readFileSync"
	OpWriteFile    = "writeFile"
	OpGetStat      = "getStat"
	OpGetStatSync  = "getStatSync"
	OpToURL        = "toURL"
	OpURIBasename  = "uriBasename"
	OpURIDirname   = "uriDirname"
)

var (
	_ CSpellIO = (*WebIO)(nil)
	_ CSpellIO = (*LocalIO)(nil)
	_ CSpellIO = (*GitIO)(nil)
	_ CSpellIO = (*BillyIO)(nil)
	_ CSpellIO = (*ObjectIO)(nil)
	_ CSpellIO = (*HTTPIO)(nil)
	_ CSpellIO = (*Router)(nil)
)

// live fails fast when ctx is already done.
func live(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
