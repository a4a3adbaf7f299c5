package fs

import (
	"io/fs"
	"slices"
	"strings"
	"time"
)

// FileKind discriminates what a Stats value describes.
type FileKind int

// Kinds in comparison order. KindUnknown means the backend did not say.
const (
	KindUnknown FileKind = iota
	KindFile
	KindDirectory
	KindSymlink
	KindOther
)

func (k FileKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// ModeKind maps an fs.FileMode onto a FileKind.
func ModeKind(mode fs.FileMode) FileKind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDirectory
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Stats is a metadata snapshot of a resource.
type Stats struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Kind    FileKind  `json:"kind"`
	ETag    string    `json:"eTag,omitempty"`
}

// StatsOf builds Stats from an fs.FileInfo.
func StatsOf(info fs.FileInfo) Stats {
	return Stats{
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Kind:    ModeKind(info.Mode()),
	}
}

// CompareStats orders stats ascending by modification time, so the older
// resource sorts first. Equal times fall back to size, then kind, then ETag,
// which keeps the order total for coarse filesystem clocks.
func CompareStats(left, right Stats) int {
	if c := left.ModTime.Compare(right.ModTime); c != 0 {
		return c
	}
	switch {
	case left.Size < right.Size:
		return -1
	case left.Size > right.Size:
		return 1
	}
	switch {
	case left.Kind < right.Kind:
		return -1
	case left.Kind > right.Kind:
		return 1
	}
	return strings.Compare(left.ETag, right.ETag)
}

// SortStats sorts s oldest first.
func SortStats(s []Stats) {
	slices.SortStableFunc(s, CompareStats)
}

// IsStale reports whether cached was captured before source last changed.
func IsStale(cached, source Stats) bool {
	return CompareStats(cached, source) < 0
}
