package workers

import (
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/scan"
)

// ModerationScanWorker consumes upload events from the moderation
// topic and runs the content-moderation scanner on each.
type ModerationScanWorker struct {
	Base
}

// NewModerationScanWorker creates a new ModerationScanWorker and
// starts handling messages immediately. This panics if it cannot
// connect to NSQ.
func NewModerationScanWorker(bufSize, numWorkers, maxAttempts int) *ModerationScanWorker {
	_context := common.NewContext()
	settings := &Settings{
		ChannelBufferSize: bufSize,
		MaxAttempts:       maxAttempts,
		NSQChannel:        constants.TopicModeration + "_worker_chan",
		NSQTopic:          constants.TopicModeration,
		NumberOfWorkers:   numWorkers,
		RequeueTimeout:    1 * time.Minute,
	}
	worker := &ModerationScanWorker{
		Base: NewBase(_context, settings),
	}
	worker.GetProcessor = func(event *service.UploadEvent) scan.Runnable {
		return scan.NewModerationScanner(_context, event)
	}
	err := worker.Start()
	if err != nil {
		panic(err)
	}
	return worker
}
