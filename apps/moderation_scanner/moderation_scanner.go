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

	worker := workers.NewModerationScanWorker(
		opts.ChannelBufferSize,
		opts.NumWorkers,
		opts.MaxAttempts,
	)

	<-worker.NSQConsumer.StopChan
}

func printHelp() {
	message := `
moderation_scanner consumes upload events and sends each staged image
or video to the external content classifier. The classifier's labels
map onto a verdict (passed, review, or quarantine), which is recorded
in the shared scan record; whichever scanner records the final expected
verdict promotes or quarantines the object.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
