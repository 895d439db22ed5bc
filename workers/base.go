package workers

import (
	"strings"

	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/scan"
	"github.com/nsqio/go-nsq"
)

// Base contains the structures common to the scan workers. Each
// worker subscribes to one NSQ topic of upload events, parses each
// message into an UploadEvent, and hands it to a scan.Runnable built
// by GetProcessor. NSQ delivers at least once and does not dedupe;
// the scan protocol is built to tolerate that, so the workers make
// no attempt to.
type Base struct {

	// Context contains info about the context in which the worker
	// is operating, including connections to NSQ, Redis, and S3.
	Context *common.Context

	// ProcessChannel is where the scan work actually happens.
	ProcessChannel chan *Task

	// SuccessChannel processes items that have gone through the
	// ProcessChannel with no errors.
	SuccessChannel chan *Task

	// ErrorChannel processes items that have gone through the
	// ProcessChannel with one or more errors. Items with
	// non-fatal errors are requeued.
	ErrorChannel chan *Task

	// Settings contains the worker's topic, channel, buffer, and
	// retry settings.
	Settings *Settings

	// GetProcessor returns the scan unit that will handle one
	// upload event. This MUST be set by structs that build on Base.
	GetProcessor func(*service.UploadEvent) scan.Runnable

	// NSQConsumer implements HandleMessage to receive messages
	// from NSQ.
	NSQConsumer *nsq.Consumer
}

func NewBase(context *common.Context, settings *Settings) Base {
	return Base{
		Context:        context,
		Settings:       settings,
		ProcessChannel: make(chan *Task, settings.ChannelBufferSize),
		SuccessChannel: make(chan *Task, settings.ChannelBufferSize),
		ErrorChannel:   make(chan *Task, settings.ChannelBufferSize),
	}
}

// Start spins up the worker go routines and registers with NSQ.
// As soon as this returns, the worker is handling messages.
func (b *Base) Start() error {
	for i := 0; i < b.Settings.NumberOfWorkers; i++ {
		go b.ProcessItem()
	}
	go b.ProcessSuccessChannel()
	go b.ProcessErrorChannel()
	return b.RegisterAsNsqConsumer()
}

// RegisterAsNsqConsumer registers this worker as an NSQ consumer on
// Settings.NSQTopic and Settings.NSQChannel. Note that as soon as you
// call this, your worker will start handling messages if any are
// available.
func (b *Base) RegisterAsNsqConsumer() error {
	config := nsq.NewConfig()
	config.Set("heartbeat_interval", "10s")
	config.Set("max_in_flight", b.Settings.ChannelBufferSize)
	consumer, err := nsq.NewConsumer(b.Settings.NSQTopic, b.Settings.NSQChannel, config)
	if err != nil {
		return err
	}
	b.NSQConsumer = consumer
	b.NSQConsumer.AddHandler(b)
	err = b.NSQConsumer.ConnectToNSQLookupd(b.Context.Config.NsqLookupd)
	if err != nil {
		return err
	}
	b.Context.Logger.Info("Registered as NSQ consumer")
	return nil
}

// HandleMessage parses the upload event from the message body and
// pushes it into the ProcessChannel. A body that doesn't parse will
// never parse, so it is logged and dropped rather than requeued.
func (b *Base) HandleMessage(message *nsq.Message) error {
	body := strings.TrimSpace(string(message.Body))
	event, err := service.UploadEventFromJSON(body)
	if err != nil {
		b.Context.Logger.Errorf("Dropping unparsable message %q: %v", body, err)
		return nil
	}
	b.Context.Logger.Infof("Received event for %s", event.String())

	// We'll respond when the scan finishes.
	message.DisableAutoResponse()

	b.ProcessChannel <- &Task{
		Event:      event,
		NSQMessage: message,
		Processor:  b.GetProcessor(event),
	}
	return nil
}

// ProcessItem calls task.Processor.Run() and then routes the task to
// the SuccessChannel or the ErrorChannel, depending on the outcome.
func (b *Base) ProcessItem() {
	for task := range b.ProcessChannel {
		count, errors := task.Processor.Run()
		task.Errors = errors
		b.Context.Logger.Infof("Processed %s: count %d, %d errors",
			task.Event.Key, count, len(errors))
		if len(errors) > 0 {
			b.ErrorChannel <- task
		} else {
			b.SuccessChannel <- task
		}
	}
}

func (b *Base) ProcessSuccessChannel() {
	for task := range b.SuccessChannel {
		task.NSQMessage.Finish()
	}
}

// ProcessErrorChannel requeues items whose errors are transient,
// within the attempt budget. Everything else is finished so NSQ
// stops redelivering it; the sweeper is the backstop for any verdict
// that never gets recorded.
func (b *Base) ProcessErrorChannel() {
	for task := range b.ErrorChannel {
		for _, procErr := range task.Errors {
			b.Context.Logger.Error(procErr.Error())
		}
		if task.HasFatalErrors() {
			b.Context.Logger.Errorf("Giving up on %s: fatal error", task.Event.Key)
			task.NSQMessage.Finish()
		} else if int(task.NSQMessage.Attempts) >= b.Settings.MaxAttempts {
			b.Context.Logger.Errorf("Giving up on %s after %d attempts. "+
				"The sweeper will resolve the record.",
				task.Event.Key, task.NSQMessage.Attempts)
			task.NSQMessage.Finish()
		} else {
			b.Context.Logger.Warningf("Requeueing %s (attempt %d of %d)",
				task.Event.Key, task.NSQMessage.Attempts, b.Settings.MaxAttempts)
			task.NSQMessage.Requeue(b.Settings.RequeueTimeout)
		}
	}
}
