// Package board holds the shared pinboard state. A single Board is shared by
// every connected session, so each exported method takes the board lock for
// the full duration of its validation and mutation.
package board

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Dimensions of the board and of every note posted to it.
const (
	Width      = 150
	Height     = 100
	NoteWidth  = 15
	NoteHeight = 10
)

// Colors is the palette a note may be posted with, in the order it is
// advertised to clients.
var Colors = []string{"red", "blue", "green", "yellow", "white"}

// Point is an integer coordinate on the board.
type Point struct {
	X, Y int
}

// Note is a posted note. Its origin is the top-left corner and doubles as the
// note's identity, so no two notes may share an origin.
type Note struct {
	Origin  Point
	Color   string
	Message string
}

// Contains reports whether p lies within the note's rectangle, edges included.
func (n Note) Contains(p Point) bool {
	return p.X >= n.Origin.X && p.X <= n.Origin.X+NoteWidth &&
		p.Y >= n.Origin.Y && p.Y <= n.Origin.Y+NoteHeight
}

// onEdge reports whether p lies exactly on the note's boundary. Callers must
// have already checked Contains.
func (n Note) onEdge(p Point) bool {
	return p.X == n.Origin.X || p.X == n.Origin.X+NoteWidth ||
		p.Y == n.Origin.Y || p.Y == n.Origin.Y+NoteHeight
}

// NoteView is a snapshot of a note along with whether it was pinned at the
// time the board was queried.
type NoteView struct {
	Note
	Pinned bool
}

// pin protects the notes it covered when it was placed. The membership is
// never recomputed, even if those notes are removed or replaced.
type pin struct {
	coordinate Point
	notes      map[Point]struct{}
}

// Filter narrows the result of Get. Nil fields are not applied and all
// non-nil fields must match.
type Filter struct {
	Color    *string
	Contains *Point
	RefersTo *string
}

// Stats is a point-in-time count of the board's contents.
type Stats struct {
	Notes int
	Pins  int
}

// Board is the concurrency-safe store of notes and pins.
type Board struct {
	mu    sync.Mutex
	notes []Note
	pins  []*pin

	// Not safe for concurrent use; only touched while mu is held.
	fold cases.Caser
}

func New() *Board {
	return &Board{fold: cases.Fold()}
}

// Post adds a note at origin. The color must be in the palette, the note must
// fit entirely on the board, and no other note may already have that origin.
func (b *Board) Post(origin Point, color, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	color = b.fold.String(color)
	if !supportedColor(color) {
		return ErrColorNotSupported
	}
	// Compare against the last valid origin so huge coordinates can't overflow.
	if origin.X < 0 || origin.Y < 0 || origin.X > Width-NoteWidth || origin.Y > Height-NoteHeight {
		return ErrOutOfBounds
	}
	for _, n := range b.notes {
		if n.Origin == origin {
			return ErrCompleteOverlap
		}
	}

	b.notes = append(b.notes, Note{Origin: origin, Color: color, Message: message})
	return nil
}

// Get returns every note matching the filter in the order they were posted.
func (b *Board) Get(f Filter) []NoteView {
	b.mu.Lock()
	defer b.mu.Unlock()

	var color, substr string
	if f.Color != nil {
		color = b.fold.String(*f.Color)
	}
	if f.RefersTo != nil {
		substr = b.fold.String(*f.RefersTo)
	}

	var views []NoteView
	for _, n := range b.notes {
		if f.Color != nil && n.Color != color {
			continue
		}
		if f.Contains != nil && !n.Contains(*f.Contains) {
			continue
		}
		if f.RefersTo != nil && !strings.Contains(b.fold.String(n.Message), substr) {
			continue
		}
		views = append(views, NoteView{Note: n, Pinned: b.isPinned(n.Origin)})
	}
	return views
}

// Pins returns the coordinates of every pin in the order they were placed.
func (b *Board) Pins() []Point {
	b.mu.Lock()
	defer b.mu.Unlock()

	coordinates := make([]Point, 0, len(b.pins))
	for _, p := range b.pins {
		coordinates = append(coordinates, p.coordinate)
	}
	return coordinates
}

// Pin places a pin at p, freezing the set of notes that strictly contain p.
// A point on the boundary of any note rejects the whole placement, even if
// other notes would have been covered.
func (b *Board) Pin(p Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.pins {
		if existing.coordinate == p {
			return ErrCompleteOverlap
		}
	}

	covered := make(map[Point]struct{})
	for _, n := range b.notes {
		if !n.Contains(p) {
			continue
		}
		if n.onEdge(p) {
			return ErrPinOnEdge
		}
		covered[n.Origin] = struct{}{}
	}
	if len(covered) == 0 {
		return ErrNoNoteAtCoordinate
	}

	b.pins = append(b.pins, &pin{coordinate: p, notes: covered})
	return nil
}

// Unpin removes the pin placed at exactly p.
func (b *Board) Unpin(p Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.pins {
		if existing.coordinate == p {
			b.pins = append(b.pins[:i], b.pins[i+1:]...)
			return nil
		}
	}
	return ErrPinNotFound
}

// Shake removes every note not protected by a pin and returns the number of
// notes removed. Pins are left in place even if nothing they protect remains.
func (b *Board) Shake() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.notes[:0]
	for _, n := range b.notes {
		if b.isPinned(n.Origin) {
			kept = append(kept, n)
		}
	}
	removed := len(b.notes) - len(kept)
	// Zero the tail so removed messages can be collected.
	for i := len(kept); i < len(b.notes); i++ {
		b.notes[i] = Note{}
	}
	b.notes = kept
	return removed
}

// Clear removes every note and pin.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notes = nil
	b.pins = nil
}

func (b *Board) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{Notes: len(b.notes), Pins: len(b.pins)}
}

// isPinned must be called with mu held.
func (b *Board) isPinned(origin Point) bool {
	for _, p := range b.pins {
		if _, ok := p.notes[origin]; ok {
			return true
		}
	}
	return false
}

func supportedColor(color string) bool {
	for _, c := range Colors {
		if c == color {
			return true
		}
	}
	return false
}
