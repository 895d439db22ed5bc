package scan

import (
	ctx "context"
	"io/ioutil"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/minio/minio-go/v7"
)

// ByteScanner is the byte-level verdict producer. It applies
// default-deny to anything outside the media allow-list, then
// validates the header magic bytes of allow-listed files against the
// signature their extension declares. It never reads more than the
// first SignatureWindow bytes of an object.
type ByteScanner struct {
	Worker
}

func NewByteScanner(context *common.Context, event *service.UploadEvent) *ByteScanner {
	return &ByteScanner{
		Worker: Worker{
			Context:     context,
			UploadEvent: event,
		},
	}
}

// Run inspects the object and records the resulting verdict. Staged
// objects go through the coordinator; anything else takes the direct
// path. Objects above the size ceiling are skipped entirely: no
// verdict, no side effect.
func (s *ByteScanner) Run() (int, []*service.ProcessingError) {
	verdict, skip := s.Inspect()
	if skip {
		return 0, nil
	}
	if s.UploadEvent.IsStaged() {
		_, errors := NewCoordinator(s.Context).RecordVerdict(
			s.UploadEvent,
			constants.FieldByteScan,
			verdict,
			ExpectedCountForKey(s.UploadEvent.Key))
		return 1, errors
	}
	return NewDirectHandler(s.Context, s.UploadEvent).Apply(verdict)
}

// Inspect produces this scanner's verdict. The second return is true
// when no verdict applies at all: the object is over the size
// ceiling, or it's already gone because some other party finalized
// it before this (possibly redelivered) event arrived.
func (s *ByteScanner) Inspect() (string, bool) {
	event := s.UploadEvent

	if s.Context.Config.MaxFileSize > 0 && event.Size > s.Context.Config.MaxFileSize {
		s.Context.Logger.Infof("Skipping %s: %d bytes exceeds scan ceiling %d",
			event.Key, event.Size, s.Context.Config.MaxFileSize)
		return "", true
	}

	format, known := FormatForKey(event.Key)
	if !known {
		s.Context.Logger.Warningf("Default deny for %s: extension %q is not an allowed media type",
			event.Key, event.Ext())
		return constants.VerdictQuarantine, false
	}

	header, err := s.fetchHeader()
	if err != nil {
		if IsNoSuchKey(err) {
			s.Context.Logger.Infof("Skipping %s: object no longer exists. "+
				"Probably already promoted or quarantined.", event.Key)
			return "", true
		}
		s.Context.Logger.Errorf("Cannot fetch header of %s: %v", event.Key, err)
		NewObjectEffects(s.Context).PublishScanError(event, constants.FieldByteScan, err)
		return constants.VerdictError, false
	}

	if !format.MatchesHeader(header) {
		s.Context.Logger.Warningf("Header of %s does not match signature for %s",
			event.Key, format.Extension)
		return constants.VerdictQuarantine, false
	}
	return constants.VerdictPassed, false
}

// fetchHeader reads the first SignatureWindow bytes of the object.
func (s *ByteScanner) fetchHeader() ([]byte, error) {
	opts := minio.GetObjectOptions{}
	err := opts.SetRange(0, SignatureWindow-1)
	if err != nil {
		return nil, err
	}
	obj, err := s.S3Client().GetObject(
		ctx.Background(),
		s.UploadEvent.Bucket,
		s.UploadEvent.Key,
		opts)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	// Objects shorter than the window return what they have;
	// MatchesHeader handles short prefixes.
	return ioutil.ReadAll(obj)
}
