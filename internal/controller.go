package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dcrodman/pinboard/internal/board"
	"github.com/dcrodman/pinboard/internal/core"
	"github.com/dcrodman/pinboard/internal/core/debug"
	"github.com/dcrodman/pinboard/internal/pinboard"
)

// Controller is the main entrypoint for the pinboard server. It's responsible for
// initializing any shared resources (such as logging and the board), defining the
// servers, and launching everything.
type Controller struct {
	Config *core.Config

	logger *logrus.Logger
	wg     sync.WaitGroup

	board   *board.Board
	servers []*frontend
}

// Start runs the servers until ctx is cancelled and every session has closed.
func (c *Controller) Start(ctx context.Context) error {
	var err error
	// Set up the logger, which will be used by all sub-servers.
	c.logger, err = core.NewLogger(c.Config)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	// Start any debug utilities if we're configured to do so.
	if c.Config.Debugging.Enabled {
		debug.StartUtilities(c.logger, c.Config.PprofAddress())
	}

	c.declareServers()
	return c.run(ctx)
}

// Set up all of the servers we want to run.
func (c *Controller) declareServers() {
	c.board = board.New()

	c.servers = []*frontend{
		{
			Address: c.Config.ListenAddress(),
			Backend: &pinboard.Server{
				Name:   "BOARD",
				Config: c.Config,
				Logger: c.logger,
				Board:  c.board,
			},
		},
	}
}

func (c *Controller) run(ctx context.Context) error {
	// Failure to initialize one of the registered servers is considered terminal.
	for _, server := range c.servers {
		server.Logger = c.logger

		if err := server.Start(ctx, &c.wg); err != nil {
			return fmt.Errorf("error starting %s server: %w", server.Backend.Identifier(), err)
		}
	}

	c.wg.Wait()

	stats := c.board.Stats()
	c.logger.Infof("board discarded with %d notes and %d pins", stats.Notes, stats.Pins)
	return nil
}
