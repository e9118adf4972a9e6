package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrDisconnected is returned by a Backend when the client asked to end its
// session. It is not treated as a communication failure.
var ErrDisconnected = errors.New("client requested disconnect")

// maxLineLength bounds a single request line so that a client can't grow the
// read buffer without limit.
const maxLineLength = 64 * 1024

// Client represents a user connected to the board.
type Client struct {
	connection net.Conn
	reader     *bufio.Reader
	ipAddr     string
	port       string

	// Debugging information used for logging purposes.
	DebugTags map[string]interface{}
}

func NewClient(connection net.Conn) *Client {
	host, port, err := net.SplitHostPort(connection.RemoteAddr().String())
	if err != nil {
		host = connection.RemoteAddr().String()
	}

	return &Client{
		connection: connection,
		reader:     bufio.NewReader(connection),
		ipAddr:     host,
		port:       port,
		DebugTags:  make(map[string]interface{}),
	}
}

func (c *Client) IPAddr() string { return c.ipAddr }
func (c *Client) Port() string   { return c.port }

// RemoteAddr uniquely identifies the connection among all connected clients.
func (c *Client) RemoteAddr() string { return c.connection.RemoteAddr().String() }

// ReadLine blocks until the client sends a full line and returns it without
// the trailing "\n" or "\r\n". A final unterminated line is returned before
// io.EOF is reported on the next call.
func (c *Client) ReadLine() (string, error) {
	var sb strings.Builder
	for {
		fragment, isPrefix, err := c.reader.ReadLine()
		if err != nil {
			return "", err
		}
		if sb.Len()+len(fragment) > maxLineLength {
			return "", fmt.Errorf("line from %s exceeds %d bytes", c.IPAddr(), maxLineLength)
		}
		sb.Write(fragment)
		if !isPrefix {
			break
		}
	}
	return strings.TrimSuffix(sb.String(), "\r"), nil
}

// Send writes each line to the client terminated by a newline.
func (c *Client) Send(lines ...string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return c.transmit([]byte(sb.String()))
}

// Close the connection.
func (c *Client) Close() error {
	return c.connection.Close()
}

// transmit writes the contents of data to the connection until all of it has
// been sent.
func (c *Client) transmit(data []byte) error {
	bytesSent := 0

	for bytesSent < len(data) {
		b, err := c.connection.Write(data[bytesSent:])
		if err != nil {
			return fmt.Errorf("failed to send to client %v: %w", c.IPAddr(), err)
		}
		bytesSent += b
	}

	return nil
}
