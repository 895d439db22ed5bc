package scan

import (
	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/network"
)

// Default confidence thresholds, applied when the config leaves
// them unset.
const defaultBlockThreshold = 0.85
const defaultReviewThreshold = 0.50

// Classifier produces a content classification for an object. The
// production implementation is network.ModerationClient; tests plug
// in their own.
type Classifier interface {
	Classify(bucket, key string) (*network.ModerationResult, error)
}

// ModerationScanner is the content-moderation verdict producer. It
// hands the object reference to the classifier and maps the returned
// labels onto a verdict: a label above the block threshold means
// quarantine, one above the review threshold means review (the
// object may still go live, flagged for human follow-up), anything
// else passes. Classifier failure is an error verdict, which
// withholds a positive signal without ever standing in for passed.
type ModerationScanner struct {
	Worker
	Classifier Classifier
}

func NewModerationScanner(context *common.Context, event *service.UploadEvent) *ModerationScanner {
	return &ModerationScanner{
		Worker: Worker{
			Context:     context,
			UploadEvent: event,
		},
		Classifier: context.ModerationClient,
	}
}

// Run classifies the object and records the verdict through the
// coordinator. Moderation only applies to staged image and video
// uploads; everything else is skipped without a verdict, since the
// expected count for those objects never includes this scanner.
func (s *ModerationScanner) Run() (int, []*service.ProcessingError) {
	event := s.UploadEvent
	if !event.IsStaged() {
		s.Context.Logger.Infof("Skipping %s: not a staged upload", event.Key)
		return 0, nil
	}
	format, known := FormatForKey(event.Key)
	if !known || !format.RequiresModeration() {
		s.Context.Logger.Infof("Skipping %s: moderation does not apply to %q",
			event.Key, event.Ext())
		return 0, nil
	}

	verdict := s.Inspect()
	_, errors := NewCoordinator(s.Context).RecordVerdict(
		event,
		constants.FieldModeration,
		verdict,
		ExpectedCountForKey(event.Key))
	return 1, errors
}

// Inspect produces this scanner's verdict.
func (s *ModerationScanner) Inspect() string {
	result, err := s.Classifier.Classify(s.UploadEvent.Bucket, s.UploadEvent.Key)
	if err != nil {
		s.Context.Logger.Errorf("Moderation of %s failed: %v", s.UploadEvent.Key, err)
		NewObjectEffects(s.Context).PublishScanError(s.UploadEvent, constants.FieldModeration, err)
		return constants.VerdictError
	}
	top := result.TopLabel()
	if top == nil {
		return constants.VerdictPassed
	}
	s.Context.Logger.Infof("Moderation of %s: top label %s at %.2f",
		s.UploadEvent.Key, top.Name, top.Confidence)
	if top.Confidence >= s.blockThreshold() {
		return constants.VerdictQuarantine
	}
	if top.Confidence >= s.reviewThreshold() {
		return constants.VerdictReview
	}
	return constants.VerdictPassed
}

func (s *ModerationScanner) blockThreshold() float64 {
	if s.Context.Config.ModerationBlockThreshold > 0 {
		return s.Context.Config.ModerationBlockThreshold
	}
	return defaultBlockThreshold
}

func (s *ModerationScanner) reviewThreshold() float64 {
	if s.Context.Config.ModerationReviewThreshold > 0 {
		return s.Context.Config.ModerationReviewThreshold
	}
	return defaultReviewThreshold
}
