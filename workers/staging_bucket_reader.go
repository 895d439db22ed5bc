package workers

import (
	ctx "context"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/minio/minio-go/v7"
)

// StagingBucketReader scans the staging bucket for objects under the
// pending-scan prefix and enqueues an upload event for each onto
// every scanner topic. It backfills bucket notifications that never
// arrived: an object can sit in staging forever if its object-created
// event was lost before reaching NSQ. The SETNX mark in Redis keeps
// one reader pass from re-enqueueing what a prior pass already
// queued, but duplicates are harmless if it ever misses.
type StagingBucketReader struct {
	Context *common.Context
}

func NewStagingBucketReader() *StagingBucketReader {
	return &StagingBucketReader{
		Context: common.NewContext(),
	}
}

func (r *StagingBucketReader) RunOnce() {
	r.logStartup()
	r.scanStagingBucket()
}

func (r *StagingBucketReader) RunAsService() {
	r.logStartup()
	for {
		r.scanStagingBucket()
		r.Context.Logger.Infof("Finished. Will scan again in %s",
			r.Context.Config.BucketReaderInterval.String())
		time.Sleep(r.Context.Config.BucketReaderInterval)
	}
}

func (r *StagingBucketReader) logStartup() {
	r.Context.Logger.Info("Starting with config settings:")
	r.Context.Logger.Info(r.Context.Config.ToJSON())
	r.Context.Logger.Infof("Scan interval: %s",
		r.Context.Config.BucketReaderInterval.String())
}

func (r *StagingBucketReader) scanStagingBucket() {
	bucket := r.Context.Config.StagingBucket
	r.Context.Logger.Infof("Scanning bucket %s for staged uploads", bucket)
	s3Client := r.Context.S3Clients[constants.StorageProviderAWS]
	objectCh := s3Client.ListObjects(
		ctx.Background(),
		bucket,
		minio.ListObjectsOptions{
			Prefix:    constants.StagingPrefix,
			Recursive: true,
		})
	for obj := range objectCh {
		if obj.Err != nil {
			r.Context.Logger.Errorf("Error reading %s: %v", bucket, obj.Err)
			continue
		}
		r.ProcessItem(obj)
	}
}

func (r *StagingBucketReader) ProcessItem(obj minio.ObjectInfo) {
	// Mark lives only as long as the scan record safety window, so
	// a truly stuck object will eventually be re-queued.
	isNew, err := r.Context.RedisClient.QueueOnce(obj.Key, r.Context.Config.ScanRecordTTL)
	if err != nil {
		r.Context.Logger.Errorf("Error checking queued mark for %s: %v", obj.Key, err)
		return
	}
	if !isNew {
		r.Context.Logger.Infof("Skipping %s: already queued", obj.Key)
		return
	}
	r.EnqueueItem(obj)
}

func (r *StagingBucketReader) EnqueueItem(obj minio.ObjectInfo) {
	event := service.NewUploadEvent(r.Context.Config.StagingBucket, obj.Key, obj.Size)
	for _, topic := range constants.ScannerTopics {
		err := r.Context.NSQClient.EnqueueEvent(topic, event)
		if err != nil {
			r.Context.Logger.Errorf("Error queueing %s to %s: %v", obj.Key, topic, err)
		} else {
			r.Context.Logger.Infof("Queued %s to %s", obj.Key, topic)
		}
	}
}
