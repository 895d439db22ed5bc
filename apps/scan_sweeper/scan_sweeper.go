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

	sweeper := workers.NewScanSweeper()
	go sweeper.RunAsService()

	<-stopChan
}

func printHelp() {
	message := `
scan_sweeper periodically resolves scan records that got stuck because
one scanner never reported, and finishes records a crashed finalizer
left behind. Stuck records get a forced decision from whatever verdicts
are present; forced promotions are tagged promoted-after-timeout.

Though this accepts the common worker params bufsize, max-attempts,
and workers, it ignores them. It relies on the config settings
SWEEP_INTERVAL and STUCK_THRESHOLD.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
