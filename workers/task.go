package workers

import (
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/scan"
	"github.com/nsqio/go-nsq"
)

// Task is one upload event moving through a worker's channels.
type Task struct {
	// Event is the parsed upload event from the NSQ message body.
	Event *service.UploadEvent

	// NSQMessage is the raw message, which the worker must Finish,
	// Requeue, or Touch.
	NSQMessage *nsq.Message

	// Processor is the scan unit that does the actual work.
	Processor scan.Runnable

	// Errors are whatever the processor reported.
	Errors []*service.ProcessingError
}

// HasFatalErrors returns true if any of this task's errors is fatal.
func (t *Task) HasFatalErrors() bool {
	for _, err := range t.Errors {
		if err.IsFatal {
			return true
		}
	}
	return false
}
