package board

// Error is a request-scoped rejection. Code is the token sent on the wire
// after "ERROR" and Description is the human readable explanation.
type Error struct {
	Code        string
	Description string
}

func (e *Error) Error() string { return e.Code + " - " + e.Description }

var (
	ErrOutOfBounds        = &Error{"OUT_OF_BOUNDS", "Note exceeds board boundaries"}
	ErrColorNotSupported  = &Error{"COLOR_NOT_SUPPORTED", "Color is not in the board palette"}
	ErrCompleteOverlap    = &Error{"COMPLETE_OVERLAP", "An item already exists at that exact coordinate"}
	ErrPinOnEdge          = &Error{"PIN_ON_EDGE", "Pin cannot be placed on the edge of a note"}
	ErrNoNoteAtCoordinate = &Error{"NO_NOTE_AT_COORDINATE", "No note contains the given point"}
	ErrPinNotFound        = &Error{"PIN_NOT_FOUND", "No pin exists at the given coordinate"}
)
