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

	stopChan := make(chan struct{})

	reader := workers.NewStagingBucketReader()
	go reader.RunAsService()

	<-stopChan
}

func printHelp() {
	message := `
staging_bucket_reader scans the staging bucket for objects under the
pending-scan prefix and queues an upload event for each onto both
scanner topics. It backfills object-created notifications that never
made it to NSQ.

Though this accepts the common worker params bufsize, max-attempts,
and workers, it ignores them. It relies on the config setting
BUCKET_READER_INTERVAL to determine how long to wait after the end
of one scan before beginning the next.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
