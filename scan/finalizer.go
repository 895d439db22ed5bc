package scan

import (
	"fmt"
	"strings"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/util"
)

// Finalizer applies the promote/quarantine decision for one completed
// (or force-completed) coordination record and performs the storage
// side effects. Exactly one caller per record becomes the finalizer
// on the normal path, but the sweeper can race a slow finalizer, so
// every side effect tolerates repetition.
//
// On side-effect failure the record is intentionally left in place so
// the sweeper can retry finalization later. On success the record is
// deleted; a failed deletion is logged only, since a leftover record
// self-heals via its expiry and the sweeper.
type Finalizer struct {
	Context *common.Context
	Record  *service.ScanRecord
	Effects *ObjectEffects

	// Forced means the sweeper is resolving a stuck record from
	// partial verdicts. Forced promotions are tagged distinctly so
	// downstream consumers can tell a timed-out promotion from a
	// clean double-pass.
	Forced bool
}

func NewFinalizer(context *common.Context, record *service.ScanRecord) *Finalizer {
	return &Finalizer{
		Context: context,
		Record:  record,
		Effects: NewObjectEffects(context),
	}
}

func NewForcedFinalizer(context *common.Context, record *service.ScanRecord) *Finalizer {
	finalizer := NewFinalizer(context, record)
	finalizer.Forced = true
	return finalizer
}

// Run decides and applies the disposition. It returns the disposition
// along with any errors. If errors are present, the coordination
// record still exists and the sweeper will retry.
func (f *Finalizer) Run() (string, []*service.ProcessingError) {
	// A record whose only verdicts are errors carries no affirmative
	// signal; promoting it would publish the object as if it had
	// passed. Leave the record alone: a redelivered scan can still
	// replace the error verdict, and once the stuck threshold passes
	// the sweeper forces a decision tagged as timed out.
	if !f.Forced && f.Record.Inconclusive() {
		f.Context.Logger.Warningf("Deferring finalization of %s/%s: no affirmative verdict (%s)",
			f.Record.Bucket, f.Record.ObjectKey, f.Record.ContributingVerdicts())
		return "", nil
	}

	disposition := f.Record.Disposition()
	f.Context.Logger.Infof("Finalizing %s/%s: disposition %s (%s, forced=%t)",
		f.Record.Bucket, f.Record.ObjectKey, disposition,
		f.Record.ContributingVerdicts(), f.Forced)

	var err error
	if disposition == constants.DispositionQuarantine {
		err = f.quarantine()
	} else {
		err = f.promote()
	}
	if err != nil {
		// Keep the record so the sweeper retries this finalization.
		return disposition, []*service.ProcessingError{
			service.NewProcessingError(f.Record.ObjectKey, err.Error(), false),
		}
	}

	delErr := f.Context.RedisClient.ScanRecordDelete(f.Record.ObjectKey)
	if delErr != nil {
		f.Context.Logger.Warningf("Could not delete scan record for %s: %v. "+
			"Record will expire on its own.", f.Record.ObjectKey, delErr)
	}
	return disposition, nil
}

// promote copies the staged object to its public key, applies the
// result tags, and deletes the staging object. Promote never alerts.
func (f *Finalizer) promote() error {
	srcKey := f.Record.ObjectKey
	dstBucket := f.Context.Config.PublicBucket
	dstKey := util.FinalKey(srcKey)

	err := f.Effects.CopyObject(f.Record.Bucket, srcKey, dstBucket, dstKey)
	if err != nil {
		return err
	}

	status := constants.StatusScanned
	if f.Forced {
		status = constants.StatusPromotedLate
	}
	err = f.Effects.TagObject(dstBucket, dstKey, map[string]string{
		constants.TagScanStatus: status,
		constants.TagModeration: f.Record.ModerationTag(),
	})
	if err != nil {
		return err
	}

	err = f.Effects.DeleteObject(f.Record.Bucket, srcKey)
	if err != nil {
		return err
	}
	f.Context.Logger.Infof("Promoted %s/%s to %s/%s (%s=%s)",
		f.Record.Bucket, srcKey, dstBucket, dstKey,
		constants.TagModeration, f.Record.ModerationTag())
	return nil
}

// quarantine copies the staged object into the isolated quarantine
// location keyed by its final name, deletes the staging object, and
// alerts operators. A failed quarantine is the highest-severity
// failure mode in this system, so that failure alerts too.
func (f *Finalizer) quarantine() error {
	srcKey := f.Record.ObjectKey
	dstBucket := f.Context.Config.QuarantineBucket
	dstKey := util.QuarantineKey(srcKey)

	err := f.Effects.CopyObject(f.Record.Bucket, srcKey, dstBucket, dstKey)
	if err == nil {
		tagErr := f.Effects.TagObject(dstBucket, dstKey, map[string]string{
			constants.TagScanStatus:  constants.StatusQuarantined,
			constants.TagScanDetails: f.Record.ContributingVerdicts(),
		})
		if tagErr != nil {
			// The copy is what isolates the object; a missing tag
			// on the quarantine copy is not worth a retry loop.
			f.Context.Logger.Warningf("Could not tag quarantined object %s/%s: %v",
				dstBucket, dstKey, tagErr)
		}
		err = f.Effects.DeleteObject(f.Record.Bucket, srcKey)
	}
	if err != nil {
		alert := service.NewAlert(constants.AlertQuarantineFailed, f.Record.Bucket, srcKey)
		alert.Verdicts = f.Record.ContributingVerdicts()
		alert.Detail = err.Error()
		f.Effects.PublishAlert(alert)
		return err
	}

	alert := service.NewAlert(constants.AlertMalwareDetected, f.Record.Bucket, srcKey)
	alert.Verdicts = f.Record.ContributingVerdicts()
	alert.QuarantineLocation = fmt.Sprintf("%s/%s", dstBucket, dstKey)
	if f.Forced {
		alert.Detail = "decision forced after stuck threshold"
	}
	f.Effects.PublishAlert(alert)

	f.Context.Logger.Infof("Quarantined %s/%s to %s/%s (%s)",
		f.Record.Bucket, srcKey, dstBucket, dstKey,
		strings.TrimSpace(f.Record.ContributingVerdicts()))
	return nil
}
