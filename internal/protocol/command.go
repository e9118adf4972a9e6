// Package protocol implements the line-based text protocol spoken between
// pinboard clients and the server: parsing request lines into commands and
// rendering board results into reply lines.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dcrodman/pinboard/internal/board"
)

// Verb identifies the kind of request a client sent.
type Verb int

const (
	Post Verb = iota + 1
	Get
	GetPins
	Pin
	Unpin
	Shake
	Clear
	Disconnect
)

var verbNames = map[Verb]string{
	Post:       "POST",
	Get:        "GET",
	GetPins:    "GET PINS",
	Pin:        "PIN",
	Unpin:      "UNPIN",
	Shake:      "SHAKE",
	Clear:      "CLEAR",
	Disconnect: "DISCONNECT",
}

func (v Verb) String() string {
	if name, ok := verbNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

// Command is a parsed request. Only the fields relevant to Verb are set.
type Command struct {
	Verb Verb

	// Point is the note origin for POST and the pin coordinate for PIN/UNPIN.
	Point   board.Point
	Color   string
	Message string

	Filter board.Filter
}

// Recognized GET filter prefixes.
const (
	colorFilter    = "color="
	containsFilter = "contains="
	refersToFilter = "refersTo="
)

// Parse converts a single request line (without its line terminator) into a
// Command. Malformed arguments return an error wrapping ErrBadSyntax and an
// unrecognized verb returns ErrUnknownCommand.
func Parse(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrUnknownCommand
	}

	// Casers aren't safe for concurrent use and Parse runs on every session.
	switch cases.Upper(language.Und).String(fields[0]) {
	case "POST":
		return parsePost(line)
	case "GET":
		return parseGet(fields[1:])
	case "PIN":
		return parsePointCommand(Pin, fields)
	case "UNPIN":
		return parsePointCommand(Unpin, fields)
	case "SHAKE":
		return parseBareCommand(Shake, fields)
	case "CLEAR":
		return &Command{Verb: Clear}, nil
	case "DISCONNECT":
		return parseBareCommand(Disconnect, fields)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// parsePost splits off the verb, coordinates, and color and keeps the rest of
// the line intact as the message so that its internal spacing is preserved.
func parsePost(line string) (*Command, error) {
	head, message := splitFields(line, 4)
	if len(head) < 4 {
		return nil, fmt.Errorf("%w: POST requires x, y, and color", ErrBadSyntax)
	}

	origin, err := parsePoint(head[1], head[2])
	if err != nil {
		return nil, err
	}

	return &Command{
		Verb:    Post,
		Point:   origin,
		Color:   head[3],
		Message: strings.TrimRightFunc(message, unicode.IsSpace),
	}, nil
}

// parseBareCommand accepts a verb only when it makes up the whole line.
func parseBareCommand(verb Verb, fields []string) (*Command, error) {
	if len(fields) > 1 {
		return nil, fmt.Errorf("%w: %s takes no arguments", ErrUnknownCommand, verb)
	}
	return &Command{Verb: verb}, nil
}

func parsePointCommand(verb Verb, fields []string) (*Command, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: %s requires x and y", ErrBadSyntax, verb)
	}

	p, err := parsePoint(fields[1], fields[2])
	if err != nil {
		return nil, err
	}
	return &Command{Verb: verb, Point: p}, nil
}

func parseGet(args []string) (*Command, error) {
	if len(args) > 0 && strings.EqualFold(args[0], "PINS") {
		return &Command{Verb: GetPins}, nil
	}

	cmd := &Command{Verb: Get}
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case hasPrefixFold(arg, colorFilter):
			color := arg[len(colorFilter):]
			cmd.Filter.Color = &color

		case hasPrefixFold(arg, containsFilter):
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%w: contains= requires x and y", ErrBadSyntax)
			}
			p, err := parsePoint(arg[len(containsFilter):], args[i+1])
			if err != nil {
				return nil, err
			}
			cmd.Filter.Contains = &p
			i++

		case hasPrefixFold(arg, refersToFilter):
			// The substring runs until the next recognized filter.
			parts := []string{arg[len(refersToFilter):]}
			for i+1 < len(args) && !isFilter(args[i+1]) {
				parts = append(parts, args[i+1])
				i++
			}
			substr := strings.TrimSpace(strings.Join(parts, " "))
			cmd.Filter.RefersTo = &substr

		default:
			return nil, fmt.Errorf("%w: unknown filter %q", ErrBadSyntax, arg)
		}
	}
	return cmd, nil
}

func parsePoint(x, y string) (board.Point, error) {
	px, err := strconv.Atoi(x)
	if err != nil {
		return board.Point{}, fmt.Errorf("%w: invalid x coordinate %q", ErrBadSyntax, x)
	}
	py, err := strconv.Atoi(y)
	if err != nil {
		return board.Point{}, fmt.Errorf("%w: invalid y coordinate %q", ErrBadSyntax, y)
	}
	return board.Point{X: px, Y: py}, nil
}

func isFilter(arg string) bool {
	return hasPrefixFold(arg, colorFilter) ||
		hasPrefixFold(arg, containsFilter) ||
		hasPrefixFold(arg, refersToFilter)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// splitFields returns up to n leading whitespace-separated fields of line and
// whatever follows them, with the separating whitespace removed.
func splitFields(line string, n int) ([]string, string) {
	var fields []string
	rest := line
	for len(fields) < n {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		fields = append(fields, rest[:end])
		rest = rest[end:]
	}
	return fields, strings.TrimLeftFunc(rest, unicode.IsSpace)
}
