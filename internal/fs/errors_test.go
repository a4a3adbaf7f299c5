package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not implemented", notImplemented(OpToURL), ErrNotImplemented},
		{"not found", hostError(OpReadFile, "file:///x", fs.ErrNotExist), ErrNotFound},
		{"permission", hostError(OpWriteFile, "file:///x", fmt.Errorf("open: %w", fs.ErrPermission)), ErrPermission},
		{"scheme before address", &OpError{Op: OpReadFile, Kind: ErrUnsupportedScheme}, ErrUnsupportedScheme},
		{"invalid address", &OpError{Op: OpToURL, Kind: ErrInvalidAddress}, ErrInvalidAddress},
		{"other host error", hostError(OpReadFile, "", errors.New("disk on fire")), ErrIO},
		{"plain error", errors.New("x"), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpError(t *testing.T) {
	err := hostError(OpReadFile, "file:///x.txt", fs.ErrNotExist)
	if got := err.Error(); got != `readFile "file:///x.txt": file does not exist` {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, fs.ErrNotExist) || !errors.Is(err, ErrNotFound) {
		t.Error("expected both host error and kind to match")
	}
	if again := hostError(OpGetStat, "", err); again != err {
		t.Error("hostError must not rewrap an OpError")
	}

	relabeled := withOp(OpURIDirname, err)
	var oe *OpError
	if !errors.As(relabeled, &oe) || oe.Op != OpURIDirname {
		t.Errorf("withOp did not relabel: %v", relabeled)
	}
	if err.(*OpError).Op != OpReadFile {
		t.Error("withOp mutated the original error")
	}
	if !errors.Is(ErrUnsupportedScheme, ErrInvalidAddress) {
		t.Error("unsupported scheme must be a resolution failure")
	}
}

func TestDecodeText(t *testing.T) {
	u := &url.URL{Scheme: "file", Path: "/x.txt"}
	got, err := decodeText(u, []byte("\xef\xbb\xbfhello"))
	if err != nil || got != "hello" {
		t.Errorf("decodeText(BOM) = %q, %v", got, err)
	}
	got, err = decodeText(u, []byte("bad \xff byte"))
	if err != nil || got != "bad � byte" {
		t.Errorf("decodeText(invalid) = %q, %v", got, err)
	}
	if _, err := decodeText(&url.URL{Scheme: "file", Path: "/x.gz"}, []byte("not gzip")); err == nil {
		t.Error("expected error for corrupt gzip")
	}
}
