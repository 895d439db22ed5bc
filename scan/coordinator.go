package scan

import (
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
)

// Coordinator merges a scanner's verdict into the shared coordination
// record and decides whether this caller finalizes. There is no lock
// anywhere: the store's atomic merge-and-return is the only
// rendezvous point between the two scanners. Each caller compares
// the scan count it got back against the expected count; whichever
// caller observes the count crossing the barrier is the sole
// finalizer for that object. A caller that lands below the barrier
// does nothing further, since finalization is the other scanner's
// (or the sweeper's) responsibility.
type Coordinator struct {
	Context *common.Context
}

func NewCoordinator(context *common.Context) *Coordinator {
	return &Coordinator{Context: context}
}

// RecordVerdict writes one scanner's verdict through the atomic merge
// and, if the merged record is now complete, runs the finalizer. The
// increment is unconditional, so a redelivered verdict bumps the
// count again; that is deliberate, because finalization is idempotent
// and a second finalize for the same object is harmless.
func (c *Coordinator) RecordVerdict(event *service.UploadEvent, producerField, verdict string, expectedCount int) (*service.ScanRecord, []*service.ProcessingError) {
	record, err := c.Context.RedisClient.MergeVerdict(
		event.Key,
		event.Bucket,
		producerField,
		verdict,
		expectedCount,
		c.Context.Config.ScanRecordTTL)
	if err != nil {
		// Transient store failures are resolved by NSQ redelivery;
		// recording the verdict again is safe.
		return nil, []*service.ProcessingError{
			service.NewProcessingError(event.Key, err.Error(), false),
		}
	}
	c.Context.Logger.Infof("Recorded %s=%s for %s (%d of %d verdicts)",
		producerField, verdict, event.Key, record.ScanCount, record.ExpectedCount)

	if !record.Complete() {
		return record, nil
	}

	_, errors := NewFinalizer(c.Context, record).Run()
	return record, errors
}
