package scan

import (
	"fmt"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/util"
)

// DirectHandler applies a single scanner's verdict to an object that
// was uploaded straight to its public location, with no staging and
// no coordination record. A quarantine verdict moves the object out
// immediately; a passed verdict just tags it as scanned in place.
// This path exists so flows that only need one scanner avoid the
// staging overhead entirely.
type DirectHandler struct {
	Worker
	Effects *ObjectEffects
}

func NewDirectHandler(context *common.Context, event *service.UploadEvent) *DirectHandler {
	return &DirectHandler{
		Worker: Worker{
			Context:     context,
			UploadEvent: event,
		},
		Effects: NewObjectEffects(context),
	}
}

// Apply performs the side effect for one direct-path verdict.
func (h *DirectHandler) Apply(verdict string) (int, []*service.ProcessingError) {
	event := h.UploadEvent
	var err error
	switch verdict {
	case constants.VerdictQuarantine:
		err = h.quarantine()
	case constants.VerdictPassed:
		err = h.Effects.TagObject(event.Bucket, event.Key, map[string]string{
			constants.TagScanStatus: constants.StatusScanned,
		})
	case constants.VerdictReview:
		err = h.Effects.TagObject(event.Bucket, event.Key, map[string]string{
			constants.TagScanStatus: constants.StatusScanned,
			constants.TagModeration: constants.ModerationUnderReview,
		})
	default:
		// An error verdict on the direct path has nothing to merge
		// with and no sweeper to retry it. The scanner alerted when
		// it produced the error; redelivery handles the retry.
		h.Context.Logger.Errorf("Direct scan of %s produced verdict %s; leaving object untouched",
			event.Key, verdict)
	}
	if err != nil {
		if IsNoSuchKey(err) {
			h.Context.Logger.Infof("Object %s is already gone; nothing to do", event.Key)
			return 0, nil
		}
		return 1, []*service.ProcessingError{h.Error(event.Key, err, false)}
	}
	return 1, nil
}

func (h *DirectHandler) quarantine() error {
	event := h.UploadEvent
	dstBucket := h.Context.Config.QuarantineBucket
	dstKey := util.QuarantineKey(event.Key)

	err := h.Effects.CopyObject(event.Bucket, event.Key, dstBucket, dstKey)
	if err == nil {
		err = h.Effects.DeleteObject(event.Bucket, event.Key)
	}
	if err != nil {
		alert := service.NewAlert(constants.AlertQuarantineFailed, event.Bucket, event.Key)
		alert.Verdicts = fmt.Sprintf("%s=%s", constants.FieldByteScan, constants.VerdictQuarantine)
		alert.Detail = err.Error()
		h.Effects.PublishAlert(alert)
		return err
	}

	alert := service.NewAlert(constants.AlertMalwareDetected, event.Bucket, event.Key)
	alert.Verdicts = fmt.Sprintf("%s=%s", constants.FieldByteScan, constants.VerdictQuarantine)
	alert.QuarantineLocation = fmt.Sprintf("%s/%s", dstBucket, dstKey)
	h.Effects.PublishAlert(alert)
	return nil
}
