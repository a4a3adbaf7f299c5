package fs

import (
	"context"
	"net/url"
)

// WebIO implements CSpellIO for hosts without native file access. Every
// operation that needs host I/O fails with a NotImplementedError; only
// CompareStats works.
type WebIO struct{}

// NewWebIO creates a WebIO.
func NewWebIO() *WebIO {
	return &WebIO{}
}

func (*WebIO) ReadFile(context.Context, Address) (TextFileResource, error) {
	return TextFileResource{}, notImplemented(OpReadFile)
}

func (*WebIO) ReadFileSync(Address) (TextFileResource, error) {
	return TextFileResource{}, notImplemented(OpReadFileSync)
}

func (*WebIO) WriteFile(context.Context, Address, string) error {
	return notImplemented(OpWriteFile)
}

func (*WebIO) GetStat(context.Context, Address) (Stats, error) {
	return Stats{}, notImplemented(OpGetStat)
}

func (*WebIO) GetStatSync(Address) (Stats, error) {
	return Stats{}, notImplemented(OpGetStatSync)
}

// CompareStats delegates to the shared comparator.
func (*WebIO) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

func (*WebIO) ToURL(Address) (*url.URL, error) {
	return nil, notImplemented(OpToURL)
}

func (*WebIO) URIBasename(Address) (string, error) {
	return "", notImplemented(OpURIBasename)
}

func (*WebIO) URIDirname(Address) (*url.URL, error) {
	return nil, notImplemented(OpURIDirname)
}
