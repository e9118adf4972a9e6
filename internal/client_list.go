package internal

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/dcrodman/pinboard/internal/core/client"
)

// clientList is a concurrency-safe registry of the clients connected to a
// frontend, keyed by remote address. Entries never expire; they are removed
// when the session ends.
type clientList struct {
	clients *gocache.Cache
}

func newClientList() *clientList {
	return &clientList{clients: gocache.New(gocache.NoExpiration, 0)}
}

func (cl *clientList) add(c *client.Client) {
	cl.clients.Set(c.RemoteAddr(), c, gocache.NoExpiration)
}

func (cl *clientList) remove(c *client.Client) {
	cl.clients.Delete(c.RemoteAddr())
}

func (cl *clientList) has(c *client.Client) bool {
	_, found := cl.clients.Get(c.RemoteAddr())
	return found
}

func (cl *clientList) len() int {
	return cl.clients.ItemCount()
}

// closeAll closes the connection of every registered client, which unblocks
// any session goroutines waiting on a read.
func (cl *clientList) closeAll() {
	for _, item := range cl.clients.Items() {
		_ = item.Object.(*client.Client).Close()
	}
}
