package fs

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"
)

func webAddresses() []Address {
	return []Address{
		Path("README.md"),
		Path("/abs/dict.txt"),
		Path(""),
		Path("https://example.com/words.txt"),
		AddressOf(&url.URL{Scheme: "file", Path: "/tmp/a.txt"}),
		AddressOf(&url.URL{Scheme: "s3", Host: "bucket", Path: "/key"}),
	}
}

func TestWebIO_RejectsEveryIOOperation(t *testing.T) {
	w := NewWebIO()
	ctx := context.Background()

	ops := []struct {
		name string
		call func(Address) error
	}{
		{OpReadFile, func(a Address) error { _, err := w.ReadFile(ctx, a); return err }},
		{OpReadFileSync, func(a Address) error { _, err := w.ReadFileSync(a); return err }},
		{OpWriteFile, func(a Address) error { return w.WriteFile(ctx, a, "content") }},
		{OpGetStat, func(a Address) error { _, err := w.GetStat(ctx, a); return err }},
		{OpGetStatSync, func(a Address) error { _, err := w.GetStatSync(a); return err }},
		{OpToURL, func(a Address) error { _, err := w.ToURL(a); return err }},
		{OpURIBasename, func(a Address) error { _, err := w.URIBasename(a); return err }},
		{OpURIDirname, func(a Address) error { _, err := w.URIDirname(a); return err }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			for _, addr := range webAddresses() {
				err := op.call(addr)
				if err == nil {
					t.Fatalf("%s(%q) returned nil error", op.name, addr)
				}
				var nie *NotImplementedError
				if !errors.As(err, &nie) {
					t.Fatalf("%s(%q) error %v is not a NotImplementedError", op.name, addr, err)
				}
				if nie.Method != op.name {
					t.Errorf("%s(%q) Method = %q", op.name, addr, nie.Method)
				}
				if !errors.Is(err, ErrNotImplemented) {
					t.Errorf("%s(%q) does not match ErrNotImplemented", op.name, addr)
				}
			}
		})
	}
}

func TestWebIO_GetStatScenario(t *testing.T) {
	_, err := NewWebIO().GetStat(context.Background(), Path("any/where.txt"))
	var nie *NotImplementedError
	if !errors.As(err, &nie) || nie.Method != "getStat" {
		t.Fatalf("GetStat error = %v, want NotImplemented getStat", err)
	}
	if got := nie.Error(); got != "method getStat is not implemented" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWebIO_CompareStats(t *testing.T) {
	w := NewWebIO()
	now := time.Now()
	a := Stats{Size: 10, ModTime: now}
	b := Stats{Size: 10, ModTime: now.Add(time.Second)}

	if got := w.CompareStats(a, a); got != 0 {
		t.Errorf("CompareStats(a, a) = %d, want 0", got)
	}
	if w.CompareStats(a, b) >= 0 || w.CompareStats(b, a) <= 0 {
		t.Errorf("expected opposite signs, got %d and %d", w.CompareStats(a, b), w.CompareStats(b, a))
	}
	if w.CompareStats(a, b) != CompareStats(a, b) {
		t.Error("WebIO.CompareStats diverges from CompareStats")
	}
}
