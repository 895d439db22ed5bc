package workers

import (
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/scan"
)

// ByteScanWorker consumes upload events from the byte-scan topic and
// runs the byte-level scanner on each.
type ByteScanWorker struct {
	Base
}

// NewByteScanWorker creates a new ByteScanWorker and starts handling
// messages immediately. This panics if it cannot connect to NSQ.
func NewByteScanWorker(bufSize, numWorkers, maxAttempts int) *ByteScanWorker {
	_context := common.NewContext()
	settings := &Settings{
		ChannelBufferSize: bufSize,
		MaxAttempts:       maxAttempts,
		NSQChannel:        constants.TopicByteScan + "_worker_chan",
		NSQTopic:          constants.TopicByteScan,
		NumberOfWorkers:   numWorkers,
		RequeueTimeout:    1 * time.Minute,
	}
	worker := &ByteScanWorker{
		Base: NewBase(_context, settings),
	}
	worker.GetProcessor = func(event *service.UploadEvent) scan.Runnable {
		return scan.NewByteScanner(_context, event)
	}
	err := worker.Start()
	if err != nil {
		panic(err)
	}
	return worker
}
