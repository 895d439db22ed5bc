package main

import (
	"fmt"
	"os"

	"github.com/mediasafe/media-scan-services/util/cli"
	"github.com/mediasafe/media-scan-services/workers"
)

func main() {
	cli.Init()
	opts := cli.ParseOpts()
	if opts.PrintHelp {
		printHelp()
		cli.PrintDefaults()
		os.Exit(0)
	}

	// If anything goes wrong, this panics.
	// Otherwise, it starts handling NSQ messages immediately.
	worker := workers.NewByteScanWorker(
		opts.ChannelBufferSize,
		opts.NumWorkers,
		opts.MaxAttempts,
	)

	// This channel blocks until we get an interrupt,
	// so our program does not exit without Control-C
	// or other kill signal.
	<-worker.NSQConsumer.StopChan
}

func printHelp() {
	message := `
byte_scanner consumes upload events and inspects each staged object at
the byte level: extensions outside the media allow-list are quarantined
outright, and allow-listed files have their header magic bytes checked
against the signature their extension declares. The verdict is recorded
in the shared scan record; whichever scanner records the final expected
verdict promotes or quarantines the object.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
