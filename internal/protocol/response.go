package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dcrodman/pinboard/internal/board"
)

var (
	ErrBadSyntax      = &board.Error{Code: "BAD_SYNTAX", Description: "Unknown command or missing arguments"}
	ErrUnknownCommand = &board.Error{Code: "UNKNOWN_COMMAND", Description: "Command is not recognized"}
)

// Fixed success replies.
const (
	NotePosted     = "OK NOTE_POSTED"
	PinAdded       = "OK PIN_ADDED"
	Unpinned       = "OK"
	ShakeComplete  = "OK SHAKE_COMPLETE"
	BoardCleared   = "OK BOARD_CLEARED"
	Disconnecting  = "OK DISCONNECTING"
	errorPrefix    = "ERROR "
	internalErrMsg = "ERROR INTERNAL - Unexpected server error"
)

// Greeting is sent once to every client before it issues any commands.
func Greeting() string {
	return fmt.Sprintf("BOARD %d %d NOTES %d %d COLORS %s",
		board.Width, board.Height, board.NoteWidth, board.NoteHeight, strings.Join(board.Colors, ","))
}

// FormatNotes renders a GET result: a count line followed by one line per note.
func FormatNotes(notes []board.NoteView) []string {
	lines := make([]string, 0, len(notes)+1)
	lines = append(lines, "OK "+strconv.Itoa(len(notes)))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("NOTE %d %d %s %s PINNED=%t",
			n.Origin.X, n.Origin.Y, n.Color, n.Message, n.Pinned))
	}
	return lines
}

// FormatPins renders a GET PINS result.
func FormatPins(pins []board.Point) []string {
	lines := make([]string, 0, len(pins)+1)
	lines = append(lines, "OK "+strconv.Itoa(len(pins)))
	for _, p := range pins {
		lines = append(lines, fmt.Sprintf("PIN %d %d", p.X, p.Y))
	}
	return lines
}

// FormatError renders a rejected request. Errors that don't carry a protocol
// code are reported generically without leaking their contents.
func FormatError(err error) string {
	var boardErr *board.Error
	if errors.As(err, &boardErr) {
		return errorPrefix + boardErr.Error()
	}
	return internalErrMsg
}
