package board

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func mustPost(t *testing.T, b *Board, x, y int, color, message string) {
	t.Helper()
	if err := b.Post(Point{x, y}, color, message); err != nil {
		t.Fatalf("Post(%d, %d) returned unexpected error: %v", x, y, err)
	}
}

func TestBoard_Post(t *testing.T) {
	tests := map[string]struct {
		origin  Point
		color   string
		wantErr error
	}{
		"top_left_corner":     {origin: Point{0, 0}, color: "red"},
		"bottom_right_corner": {origin: Point{135, 90}, color: "white"},
		"mixed_case_color":    {origin: Point{20, 20}, color: "YeLLow"},
		"too_far_right":       {origin: Point{140, 0}, color: "red", wantErr: ErrOutOfBounds},
		"too_far_down":        {origin: Point{0, 91}, color: "red", wantErr: ErrOutOfBounds},
		"negative_x":          {origin: Point{-1, 0}, color: "red", wantErr: ErrOutOfBounds},
		"negative_y":          {origin: Point{0, -5}, color: "blue", wantErr: ErrOutOfBounds},
		"unsupported_color":   {origin: Point{0, 0}, color: "purple", wantErr: ErrColorNotSupported},
		"huge_x":              {origin: Point{math.MaxInt - 7, 0}, color: "red", wantErr: ErrOutOfBounds},
		"huge_y":              {origin: Point{0, math.MaxInt - 5}, color: "red", wantErr: ErrOutOfBounds},
		// The color check happens before the bounds check.
		"unsupported_and_out_of_bounds": {origin: Point{149, 0}, color: "purple", wantErr: ErrColorNotSupported},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := New()
			err := b.Post(tt.origin, tt.color, "hello")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Post() error = %v, want %v", err, tt.wantErr)
			}

			wantNotes := 1
			if tt.wantErr != nil {
				wantNotes = 0
			}
			if got := b.Stats().Notes; got != wantNotes {
				t.Errorf("expected %d notes after Post(), got %d", wantNotes, got)
			}
		})
	}
}

func TestBoard_PostStoresLowercaseColor(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "GREEN", "go team")

	want := []NoteView{{Note: Note{Origin: Point{0, 0}, Color: "green", Message: "go team"}}}
	if diff := cmp.Diff(want, b.Get(Filter{})); diff != "" {
		t.Errorf("Get() result did not match expected; diff:\n%s", diff)
	}
}

func TestBoard_PostCompleteOverlap(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "hello")

	if err := b.Post(Point{0, 0}, "blue", "hello again"); !errors.Is(err, ErrCompleteOverlap) {
		t.Fatalf("expected ErrCompleteOverlap, got %v", err)
	}
	// Partial overlap is allowed, only identical origins collide.
	mustPost(t, b, 1, 1, "red", "offset")

	if got := b.Stats().Notes; got != 2 {
		t.Errorf("expected 2 notes, got %d", got)
	}
}

func TestBoard_Get(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "team meeting at noon")
	mustPost(t, b, 20, 0, "blue", "Meeting notes")
	mustPost(t, b, 40, 40, "red", "groceries")
	mustPost(t, b, 5, 5, "red", "another MEETING")

	tests := map[string]struct {
		filter Filter
		want   []Point
	}{
		"no_filter": {
			filter: Filter{},
			want:   []Point{{0, 0}, {20, 0}, {40, 40}, {5, 5}},
		},
		"color": {
			filter: Filter{Color: strPtr("RED")},
			want:   []Point{{0, 0}, {40, 40}, {5, 5}},
		},
		"color_and_refers_to": {
			filter: Filter{Color: strPtr("red"), RefersTo: strPtr("meeting")},
			want:   []Point{{0, 0}, {5, 5}},
		},
		"refers_to_with_spaces": {
			filter: Filter{RefersTo: strPtr("meeting at")},
			want:   []Point{{0, 0}},
		},
		"contains_interior": {
			filter: Filter{Contains: &Point{10, 8}},
			want:   []Point{{0, 0}, {5, 5}},
		},
		"contains_edge_is_inclusive": {
			filter: Filter{Contains: &Point{15, 10}},
			want:   []Point{{0, 0}, {5, 5}},
		},
		"contains_and_color": {
			filter: Filter{Contains: &Point{20, 0}, Color: strPtr("blue")},
			want:   []Point{{20, 0}},
		},
		"empty_color_matches_nothing": {
			filter: Filter{Color: strPtr("")},
		},
		"no_match": {
			filter: Filter{RefersTo: strPtr("vacation")},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got []Point
			for _, v := range b.Get(tt.filter) {
				got = append(got, v.Origin)
			}
			if diff := deep.Equal(got, tt.want); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestBoard_Pin(t *testing.T) {
	tests := map[string]struct {
		notes   []Point
		pins    []Point
		pin     Point
		wantErr error
	}{
		"strictly_inside": {
			notes: []Point{{0, 0}},
			pin:   Point{5, 5},
		},
		"covers_two_notes": {
			notes: []Point{{0, 0}, {5, 5}},
			pin:   Point{10, 8},
		},
		"left_edge": {
			notes:   []Point{{10, 10}},
			pin:     Point{10, 15},
			wantErr: ErrPinOnEdge,
		},
		"bottom_right_corner": {
			notes:   []Point{{10, 10}},
			pin:     Point{25, 20},
			wantErr: ErrPinOnEdge,
		},
		// Inside the first note but on the edge of the second one.
		"edge_of_one_inside_another": {
			notes:   []Point{{0, 0}, {5, 5}},
			pin:     Point{5, 7},
			wantErr: ErrPinOnEdge,
		},
		"empty_space": {
			notes:   []Point{{0, 0}},
			pin:     Point{100, 80},
			wantErr: ErrNoNoteAtCoordinate,
		},
		"empty_board": {
			pin:     Point{1, 1},
			wantErr: ErrNoNoteAtCoordinate,
		},
		"duplicate_pin": {
			notes:   []Point{{0, 0}},
			pins:    []Point{{5, 5}},
			pin:     Point{5, 5},
			wantErr: ErrCompleteOverlap,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := New()
			for _, n := range tt.notes {
				mustPost(t, b, n.X, n.Y, "white", "")
			}
			for _, p := range tt.pins {
				if err := b.Pin(p); err != nil {
					t.Fatalf("error seeding pin: %v", err)
				}
			}

			err := b.Pin(tt.pin)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Pin() error = %v, want %v", err, tt.wantErr)
			}

			wantPins := len(tt.pins)
			if tt.wantErr == nil {
				wantPins++
			}
			if got := len(b.Pins()); got != wantPins {
				t.Errorf("expected %d pins, got %d", wantPins, got)
			}
		})
	}
}

func TestBoard_PinMarksNotesPinned(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "pinned")
	mustPost(t, b, 50, 50, "red", "loose")

	if err := b.Pin(Point{7, 3}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	want := []NoteView{
		{Note: Note{Origin: Point{0, 0}, Color: "red", Message: "pinned"}, Pinned: true},
		{Note: Note{Origin: Point{50, 50}, Color: "red", Message: "loose"}, Pinned: false},
	}
	if diff := cmp.Diff(want, b.Get(Filter{})); diff != "" {
		t.Errorf("Get() result did not match expected; diff:\n%s", diff)
	}
}

func TestBoard_PinOnEdgeLeavesNoteUnpinned(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "edge")

	if err := b.Pin(Point{0, 5}); !errors.Is(err, ErrPinOnEdge) {
		t.Fatalf("expected ErrPinOnEdge, got %v", err)
	}
	if views := b.Get(Filter{}); views[0].Pinned {
		t.Error("expected note to remain unpinned")
	}
	if len(b.Pins()) != 0 {
		t.Error("expected no pins to be created")
	}
}

func TestBoard_PinMembershipIsFrozen(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "first")
	if err := b.Pin(Point{5, 5}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	// Posted after the pin, so it is not protected even though the pin lies within it.
	mustPost(t, b, 2, 2, "blue", "second")
	b.Shake()

	views := b.Get(Filter{})
	if len(views) != 1 || views[0].Origin != (Point{0, 0}) {
		t.Fatalf("expected only the originally pinned note to survive, got %+v", views)
	}
}

func TestBoard_Unpin(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "hello")
	if err := b.Pin(Point{5, 5}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	if err := b.Unpin(Point{5, 6}); !errors.Is(err, ErrPinNotFound) {
		t.Fatalf("expected ErrPinNotFound for a near miss, got %v", err)
	}
	if err := b.Unpin(Point{5, 5}); err != nil {
		t.Fatalf("Unpin() returned unexpected error: %v", err)
	}
	if err := b.Unpin(Point{5, 5}); !errors.Is(err, ErrPinNotFound) {
		t.Fatalf("expected ErrPinNotFound after removal, got %v", err)
	}
	if views := b.Get(Filter{}); views[0].Pinned {
		t.Error("expected note to be unpinned after Unpin()")
	}
}

func TestBoard_Shake(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "keep me")
	mustPost(t, b, 50, 50, "blue", "lose me")
	if err := b.Pin(Point{5, 5}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	if removed := b.Shake(); removed != 1 {
		t.Errorf("expected Shake() to remove 1 note, removed %d", removed)
	}

	want := Stats{Notes: 1, Pins: 1}
	if diff := cmp.Diff(want, b.Stats()); diff != "" {
		t.Errorf("unexpected board contents after Shake(); diff:\n%s", diff)
	}
	if views := b.Get(Filter{}); views[0].Message != "keep me" || !views[0].Pinned {
		t.Errorf("expected pinned note to survive, got %+v", views[0])
	}
}

func TestBoard_ShakeKeepsPins(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "hello")
	mustPost(t, b, 100, 10, "red", "world")
	if err := b.Pin(Point{5, 5}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}
	if err := b.Pin(Point{110, 15}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	b.Shake()
	b.Shake()

	if diff := deep.Equal(b.Pins(), []Point{{5, 5}, {110, 15}}); diff != nil {
		t.Error(diff)
	}
}

// Membership is keyed by origin. A note can only be shaken off once no pin
// holds its origin, so a note reposted at that origin starts out unpinned.
func TestBoard_RepostAtShakenOrigin(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "original")
	mustPost(t, b, 30, 30, "blue", "anchor")
	if err := b.Pin(Point{5, 5}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}
	if err := b.Pin(Point{35, 35}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	if err := b.Unpin(Point{5, 5}); err != nil {
		t.Fatalf("Unpin() returned unexpected error: %v", err)
	}
	if removed := b.Shake(); removed != 1 {
		t.Fatalf("expected Shake() to remove 1 note, removed %d", removed)
	}

	mustPost(t, b, 0, 0, "green", "reposted")
	views := b.Get(Filter{Contains: &Point{5, 5}})
	if len(views) != 1 || views[0].Message != "reposted" || views[0].Pinned {
		t.Fatalf("expected an unpinned reposted note, got %+v", views)
	}

	// Pinning the reposted note protects it by origin like any other note.
	if err := b.Pin(Point{6, 6}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}
	b.Shake()
	if diff := deep.Equal(b.Stats(), Stats{Notes: 2, Pins: 2}); diff != nil {
		t.Error(diff)
	}
}

func TestBoard_Clear(t *testing.T) {
	b := New()
	mustPost(t, b, 0, 0, "red", "hello")
	mustPost(t, b, 30, 30, "blue", "world")
	if err := b.Pin(Point{5, 5}); err != nil {
		t.Fatalf("Pin() returned unexpected error: %v", err)
	}

	b.Clear()

	if got := len(b.Get(Filter{})); got != 0 {
		t.Errorf("expected no notes after Clear(), got %d", got)
	}
	if got := len(b.Pins()); got != 0 {
		t.Errorf("expected no pins after Clear(), got %d", got)
	}
}

func TestBoard_ConcurrentPosts(t *testing.T) {
	b := New()

	var wg sync.WaitGroup
	var origins []Point
	for x := 0; x+NoteWidth <= Width; x += NoteWidth {
		for y := 0; y+NoteHeight <= Height; y += NoteHeight {
			origins = append(origins, Point{x, y})
		}
	}

	errs := make(chan error, len(origins))
	for _, o := range origins {
		wg.Add(1)
		go func(o Point) {
			defer wg.Done()
			errs <- b.Post(o, "yellow", "concurrent")
		}(o)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Post() returned unexpected error: %v", err)
		}
	}
	if got := len(b.Get(Filter{})); got != len(origins) {
		t.Errorf("expected %d notes, got %d", len(origins), got)
	}
}
