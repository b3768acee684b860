package state

import (
	"slices"
	"testing"

	"github.com/kk-code-lab/rpix/internal/imaging"
)

func TestWindowOrderNearestFirst(t *testing.T) {
	tests := []struct {
		name                string
		current, start, end int
		want                []int
	}{
		{"symmetric", 5, 2, 8, []int{5, 6, 4, 7, 3, 8, 2}},
		{"ahead only", 0, 0, 5, []int{0, 1, 2, 3, 4, 5}},
		{"clamped at end", 9, 6, 9, []int{9, 8, 7, 6}},
		{"single", 0, 0, 0, []int{0}},
		{"empty", 3, 4, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowOrder(tt.current, tt.start, tt.end); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWindowBoundsClamp(t *testing.T) {
	tests := []struct {
		current, n int
		w          Window
		start, end int
	}{
		{0, 10, Window{0, 5}, 0, 5},
		{1, 10, Window{3, 5}, 0, 6},
		{8, 10, Window{3, 5}, 5, 9},
		{0, 1, Window{3, 5}, 0, 0},
		{4, 10, Window{-2, -1}, 4, 4},
	}
	for _, tt := range tests {
		start, end := windowBounds(tt.current, tt.n, tt.w)
		if start != tt.start || end != tt.end {
			t.Fatalf("current=%d n=%d %+v: expected [%d,%d], got [%d,%d]",
				tt.current, tt.n, tt.w, tt.start, tt.end, start, end)
		}
	}
}

func TestRefreshWindowIsIdempotent(t *testing.T) {
	f := newEngineFixture(t, 10)
	f.open(t)
	f.pipeline.reset()

	if n := f.reducer.refreshWindow(f.state, DefaultNavWindow); n != 0 {
		t.Fatalf("expected no new requests right after open with the same extents, got %d", n)
	}

	f.state.CurrentIndex = 4
	first := f.reducer.refreshWindow(f.state, DefaultNavWindow)
	if first == 0 {
		t.Fatal("expected the moved window to request new images")
	}
	if second := f.reducer.refreshWindow(f.state, DefaultNavWindow); second != 0 {
		t.Fatalf("expected second refresh to issue nothing, got %d", second)
	}
	if len(f.pipeline.jobs) != first {
		t.Fatalf("expected %d submitted jobs, got %d", first, len(f.pipeline.jobs))
	}
}

func TestRefreshWindowSkipsCachedAndPending(t *testing.T) {
	f := newEngineFixture(t, 10)
	f.state.Files = fakeEntries(f.folder, 10)
	f.state.CurrentIndex = 3
	f.state.Cache.Put(f.path(4), imaging.NewImage(1, 1))
	f.state.Pending[f.path(2)] = struct{}{}

	issued := f.reducer.refreshWindow(f.state, Window{Back: 1, Ahead: 2})

	want := []string{f.path(3), f.path(5)}
	if !slices.Equal(f.pipeline.paths(), want) {
		t.Fatalf("expected requests %v, got %v", want, f.pipeline.paths())
	}
	if issued != 2 {
		t.Fatalf("expected 2 issued, got %d", issued)
	}
	// Checking the window must not disturb LRU order.
	if got := f.state.Cache.Paths(); !slices.Equal(got, []string{f.path(4)}) {
		t.Fatalf("unexpected cache contents %v", got)
	}
}

func TestRefreshWindowEmpty(t *testing.T) {
	f := newEngineFixture(t, 0)
	if n := f.reducer.refreshWindow(f.state, DefaultNavWindow); n != 0 {
		t.Fatalf("expected no requests without files, got %d", n)
	}
}
