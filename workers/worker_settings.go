package workers

import (
	"encoding/json"
	"time"
)

// Settings contains settings for a scan worker.
type Settings struct {
	// ChannelBufferSize is the size of the buffer for the
	// ProcessChannel, SuccessChannel, and ErrorChannel.
	ChannelBufferSize int

	// MaxAttempts is the maximum number of times the worker should
	// attempt to process an upload event before giving up. This
	// applies only to attempts that fail from non-fatal (transient)
	// errors. Workers stop immediately on fatal errors.
	MaxAttempts int

	// NSQChannel is the NSQ channel the worker should subscribe
	// to to receive messages.
	NSQChannel string

	// NSQTopic is the NSQ topic the worker should subscribe
	// to to receive messages.
	NSQTopic string

	// NumberOfWorkers is the number of go routines to spin up
	// to handle the main task of the worker. Scan work is mostly
	// network I/O against the object store, the coordination store,
	// and the moderation service, so modest parallelism goes a
	// long way.
	NumberOfWorkers int

	// RequeueTimeout describes how long of a timeout to set
	// on the NSQ requeue after an item fails with non-fatal
	// errors.
	RequeueTimeout time.Duration
}

func (settings *Settings) ToJSON() string {
	data, _ := json.Marshal(settings)
	return string(data)
}
