package internal

import (
	"context"

	"github.com/dcrodman/pinboard/internal/core/client"
)

// Backend is an interface for a server that handles the requests of clients
// accepted by a frontend.
type Backend interface {
	// Identifier returns a uniquely identifying string.
	Identifier() string

	// Init is called before a Backend is started as a hook for the Backend to
	// perform any necessary initialization before it can accept clients.
	Init(ctx context.Context) error

	// SetUpClient performs any initialization on the Client needed to be
	// able to begin the session.
	SetUpClient(c *client.Client)

	// Handshake performs any connection initialization necessary to begin
	// communicating with the client. This likely involves sending a greeting.
	Handshake(c *client.Client) error

	// Handle is the main entry point for processing a request line from a client.
	// It's responsible for fully handling the request, including sending the reply,
	// before the next line is read. Returning client.ErrDisconnected ends the
	// session cleanly.
	Handle(ctx context.Context, c *client.Client, line string) error
}
