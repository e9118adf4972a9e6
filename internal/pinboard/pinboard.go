// Package pinboard is the Backend that serves the shared board over the text
// protocol. Every session shares the same Board; the backend holds no
// per-client board state.
package pinboard

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dcrodman/pinboard/internal/board"
	"github.com/dcrodman/pinboard/internal/core"
	"github.com/dcrodman/pinboard/internal/core/client"
	"github.com/dcrodman/pinboard/internal/core/debug"
	"github.com/dcrodman/pinboard/internal/protocol"
)

// Server is the BOARD server implementation.
type Server struct {
	Name   string
	Config *core.Config
	Logger *logrus.Logger
	Board  *board.Board
}

func (s *Server) Identifier() string { return s.Name }

func (s *Server) Init(ctx context.Context) error {
	if s.Board == nil {
		s.Board = board.New()
	}
	return nil
}

func (s *Server) SetUpClient(c *client.Client) {
	c.DebugTags["server_type"] = "board"
}

func (s *Server) Handshake(c *client.Client) error {
	return c.Send(protocol.Greeting())
}

// Handle executes a single request line and writes the complete reply. The
// board call finishes, releasing the board lock, before anything is written
// to the client.
func (s *Server) Handle(ctx context.Context, c *client.Client, line string) error {
	cmd, err := protocol.Parse(line)
	if err != nil {
		s.Logger.Debugf("[%s] rejected request from %s: %v", s.Name, c.RemoteAddr(), err)
		return c.Send(protocol.FormatError(err))
	}

	if s.Config.Debugging.CommandLoggingEnabled {
		s.Logger.Infof("[%s] %s command from %s:\n%s", s.Name, cmd.Verb, c.RemoteAddr(), debug.Dump(cmd))
	}

	reply := s.execute(cmd)
	if err := c.Send(reply...); err != nil {
		return err
	}

	if cmd.Verb == protocol.Disconnect {
		return client.ErrDisconnected
	}
	return nil
}

func (s *Server) execute(cmd *protocol.Command) []string {
	switch cmd.Verb {
	case protocol.Post:
		if err := s.Board.Post(cmd.Point, cmd.Color, cmd.Message); err != nil {
			return []string{protocol.FormatError(err)}
		}
		return []string{protocol.NotePosted}
	case protocol.Get:
		return protocol.FormatNotes(s.Board.Get(cmd.Filter))
	case protocol.GetPins:
		return protocol.FormatPins(s.Board.Pins())
	case protocol.Pin:
		if err := s.Board.Pin(cmd.Point); err != nil {
			return []string{protocol.FormatError(err)}
		}
		return []string{protocol.PinAdded}
	case protocol.Unpin:
		if err := s.Board.Unpin(cmd.Point); err != nil {
			return []string{protocol.FormatError(err)}
		}
		return []string{protocol.Unpinned}
	case protocol.Shake:
		removed := s.Board.Shake()
		s.Logger.Debugf("[%s] shake removed %d notes", s.Name, removed)
		return []string{protocol.ShakeComplete}
	case protocol.Clear:
		s.Board.Clear()
		return []string{protocol.BoardCleared}
	case protocol.Disconnect:
		return []string{protocol.Disconnecting}
	default:
		s.Logger.Errorf("[%s] no handler for command %s", s.Name, cmd.Verb)
		return []string{protocol.FormatError(protocol.ErrUnknownCommand)}
	}
}
