package scan

import (
	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/minio/minio-go/v7"
)

// Runnable is the contract between the workers package and the units
// in this package. Each invocation is a stateless unit of work: it
// may run concurrently with any other, including another invocation
// of itself for the same object, because upload events are delivered
// at least once.
type Runnable interface {
	Run() (count int, errors []*service.ProcessingError)
	Event() *service.UploadEvent
}

// Worker is the base type for the scan units in this package.
type Worker struct {
	Context     *common.Context
	UploadEvent *service.UploadEvent
}

// Event returns the upload event this worker is processing. This
// satisfies part of the Runnable interface.
func (w *Worker) Event() *service.UploadEvent {
	return w.UploadEvent
}

// S3Client returns the object-store client for the primary storage
// provider.
func (w *Worker) S3Client() *minio.Client {
	return w.Context.S3Clients[constants.StorageProviderAWS]
}

// Error returns a ProcessingError describing something that went
// wrong while scanning or finalizing this object.
func (w *Worker) Error(identifier string, err error, isFatal bool) *service.ProcessingError {
	return service.NewProcessingError(
		identifier,
		err.Error(),
		isFatal,
	)
}
