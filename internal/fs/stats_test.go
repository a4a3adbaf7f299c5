package fs

import (
	"io/fs"
	"math/rand"
	"testing"
	"time"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCompareStats(t *testing.T) {
	tests := []struct {
		name  string
		left  Stats
		right Stats
		want  int
	}{
		{"older first", Stats{Size: 5, ModTime: epoch}, Stats{Size: 5, ModTime: epoch.Add(time.Millisecond)}, -1},
		{"newer last", Stats{Size: 5, ModTime: epoch.Add(time.Hour)}, Stats{Size: 5, ModTime: epoch}, 1},
		{"time wins over size", Stats{Size: 900, ModTime: epoch}, Stats{Size: 1, ModTime: epoch.Add(time.Second)}, -1},
		{"size breaks tie", Stats{Size: 100, ModTime: epoch}, Stats{Size: 200, ModTime: epoch}, -1},
		{"kind breaks tie", Stats{Size: 1, ModTime: epoch, Kind: KindDirectory}, Stats{Size: 1, ModTime: epoch, Kind: KindFile}, 1},
		{"missing kind", Stats{Size: 1, ModTime: epoch}, Stats{Size: 1, ModTime: epoch, Kind: KindFile}, -1},
		{"etag breaks tie", Stats{ModTime: epoch, ETag: "a"}, Stats{ModTime: epoch, ETag: "b"}, -1},
		{"equal", Stats{Size: 7, ModTime: epoch, Kind: KindFile, ETag: "x"}, Stats{Size: 7, ModTime: epoch, Kind: KindFile, ETag: "x"}, 0},
		{"zero values", Stats{}, Stats{}, 0},
		{"location ignored", Stats{ModTime: epoch}, Stats{ModTime: epoch.In(time.FixedZone("x", 3600))}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareStats(tt.left, tt.right); got != tt.want {
				t.Errorf("CompareStats() = %d, want %d", got, tt.want)
			}
			if got := CompareStats(tt.right, tt.left); got != -tt.want {
				t.Errorf("CompareStats(reversed) = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestCompareStats_TieIsDeterministic(t *testing.T) {
	s1 := Stats{Size: 100, ModTime: epoch}
	s2 := Stats{Size: 200, ModTime: epoch}
	first := CompareStats(s1, s2)
	if first == 0 {
		t.Fatal("equal timestamps with different sizes must not compare equal")
	}
	for i := 0; i < 100; i++ {
		if got := CompareStats(s1, s2); got != first {
			t.Fatalf("call %d = %d, first call = %d", i, got, first)
		}
	}
}

// genStats draws from a small space so equal timestamps and sizes are common.
func genStats(r *rand.Rand) Stats {
	return Stats{
		Size:    int64(r.Intn(3)) * 100,
		ModTime: epoch.Add(time.Duration(r.Intn(3)) * time.Second),
		Kind:    FileKind(r.Intn(3)),
		ETag:    []string{"", "a", "b"}[r.Intn(3)],
	}
}

func TestCompareStats_OrderProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		a, b, c := genStats(r), genStats(r), genStats(r)

		if CompareStats(a, a) != 0 {
			t.Fatalf("not reflexive for %+v", a)
		}
		ab, ba := CompareStats(a, b), CompareStats(b, a)
		if ab != -ba {
			t.Fatalf("not antisymmetric: %+v vs %+v gives %d and %d", a, b, ab, ba)
		}
		if ab == 0 && a != b {
			t.Fatalf("distinct stats compare equal: %+v %+v", a, b)
		}
		if ab <= 0 && CompareStats(b, c) <= 0 && CompareStats(a, c) > 0 {
			t.Fatalf("not transitive: %+v <= %+v <= %+v but a > c", a, b, c)
		}
	}
}

func TestSortStatsAndIsStale(t *testing.T) {
	s := []Stats{
		{Size: 3, ModTime: epoch.Add(2 * time.Second)},
		{Size: 2, ModTime: epoch},
		{Size: 1, ModTime: epoch},
	}
	SortStats(s)
	if s[0].Size != 1 || s[1].Size != 2 || s[2].Size != 3 {
		t.Errorf("unexpected order: %+v", s)
	}

	cached := Stats{Size: 10, ModTime: epoch}
	if IsStale(cached, cached) {
		t.Error("identical stats reported stale")
	}
	if !IsStale(cached, Stats{Size: 10, ModTime: epoch.Add(time.Second)}) {
		t.Error("newer source not reported stale")
	}
}

func TestModeKind(t *testing.T) {
	tests := []struct {
		mode fs.FileMode
		want FileKind
	}{
		{0o644, KindFile},
		{fs.ModeDir | 0o755, KindDirectory},
		{fs.ModeSymlink | 0o777, KindSymlink},
		{fs.ModeNamedPipe, KindOther},
	}
	for _, tt := range tests {
		if got := ModeKind(tt.mode); got != tt.want {
			t.Errorf("ModeKind(%v) = %v, want %v", tt.mode, got, tt.want)
		}
	}
	if KindUnknown.String() != "unknown" || KindFile.String() != "file" {
		t.Error("unexpected FileKind strings")
	}
}
