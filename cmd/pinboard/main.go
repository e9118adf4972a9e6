// The pinboard command is the main entrypoint for running the shared board
// server. It loads the configuration, then runs the board until it receives
// SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dcrodman/pinboard/internal"
	"github.com/dcrodman/pinboard/internal/core"
)

var (
	configFlag = flag.StringP("config", "c", "./", "Path to the directory containing the server config file")
	portFlag   = flag.IntP("port", "p", 0, "Port to listen on (overrides the config file)")
)

func main() {
	flag.Parse()

	fmt.Println("Pinboard Server\n" +
		"===============")

	config, err := core.LoadConfig(*configFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if flag.CommandLine.Changed("port") {
		config.Port = *portFlag
	}
	fmt.Println("using configuration directory:", *configFlag)

	// Bind the Controller to one top-level server context so that we can shut down cleanly.
	ctx, cancel := context.WithCancel(context.Background())

	// Register a SIGTERM handler so that Ctrl-C will shut the servers down gracefully.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go exitHandler(cancel, c)

	controller := &internal.Controller{Config: config}
	if err := controller.Start(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("shut down")
}

// exitHandler cancels the server context on the first signal and hard exits
// on the second.
func exitHandler(cancelFn func(), c chan os.Signal) {
	<-c
	fmt.Println("waiting to shut down gracefully...")
	cancelFn()

	<-c
	fmt.Println("hard exiting (killed)")
	os.Exit(1)
}
