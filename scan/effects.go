package scan

import (
	ctx "context"
	"fmt"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/tags"
)

// ObjectEffects performs the storage side effects of a scan decision:
// copies, deletes, tags, and operator alerts. Every operation here is
// written to be safely repeatable, because the sweeper and a scanner
// can both attempt finalization for the same object under pathological
// timing, and upload events are delivered at least once. "Source
// already gone" is success, not failure.
type ObjectEffects struct {
	Context *common.Context
}

func NewObjectEffects(context *common.Context) *ObjectEffects {
	return &ObjectEffects{Context: context}
}

func (e *ObjectEffects) s3Client() *minio.Client {
	return e.Context.S3Clients[constants.StorageProviderAWS]
}

// IsNoSuchKey returns true if err means the object does not exist.
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == 404
}

// CopyObject copies src to dst, preferring a server-side copy. Not
// every S3-compatible store implements server-side copy, so a failed
// copy is retried as a get-then-put through this service. If the
// source is already gone, it checks whether the destination exists:
// a prior attempt that crashed after copying leaves exactly that
// state, and repeating the work must succeed.
func (e *ObjectEffects) CopyObject(srcBucket, srcKey, dstBucket, dstKey string) error {
	client := e.s3Client()
	_, err := client.CopyObject(
		ctx.Background(),
		minio.CopyDestOptions{Bucket: dstBucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey})
	if err == nil {
		return nil
	}
	if !IsNoSuchKey(err) {
		e.Context.Logger.Infof("Server-side copy of %s/%s failed (%v). Copying through the service.",
			srcBucket, srcKey, err)
		err = e.streamCopy(srcBucket, srcKey, dstBucket, dstKey)
		if err == nil {
			return nil
		}
	}
	if IsNoSuchKey(err) {
		_, statErr := e.Context.S3StatObject(constants.StorageProviderAWS, dstBucket, dstKey)
		if statErr == nil {
			e.Context.Logger.Infof("Copy %s/%s -> %s/%s: source gone, destination present. Already done.",
				srcBucket, srcKey, dstBucket, dstKey)
			return nil
		}
		return fmt.Errorf("Cannot copy %s/%s: source and destination both missing: %v",
			srcBucket, srcKey, err)
	}
	return fmt.Errorf("Cannot copy %s/%s to %s/%s: %v",
		srcBucket, srcKey, dstBucket, dstKey, err)
}

func (e *ObjectEffects) streamCopy(srcBucket, srcKey, dstBucket, dstKey string) error {
	src, err := e.Context.S3GetObject(constants.StorageProviderAWS, srcBucket, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()
	stat, err := src.Stat()
	if err != nil {
		return err
	}
	_, err = e.s3Client().PutObject(ctx.Background(), dstBucket, dstKey, src, stat.Size,
		minio.PutObjectOptions{ContentType: stat.ContentType})
	return err
}

// DeleteObject removes an object. Deleting an object that's already
// gone is success.
func (e *ObjectEffects) DeleteObject(bucket, key string) error {
	err := e.s3Client().RemoveObject(ctx.Background(), bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !IsNoSuchKey(err) {
		return fmt.Errorf("Cannot delete %s/%s: %v", bucket, key, err)
	}
	return nil
}

// TagObject replaces the object's tag set. The scan-date tag is
// always added so operators can tell when the decision was made.
func (e *ObjectEffects) TagObject(bucket, key string, tagMap map[string]string) error {
	tagMap[constants.TagScanDate] = time.Now().UTC().Format(time.RFC3339)
	tagSet, err := tags.NewTags(tagMap, true)
	if err != nil {
		return err
	}
	err = e.s3Client().PutObjectTagging(ctx.Background(), bucket, key, tagSet, minio.PutObjectTaggingOptions{})
	if err != nil {
		return fmt.Errorf("Cannot tag %s/%s: %v", bucket, key, err)
	}
	return nil
}

// PublishAlert sends an operator alert. Alerting is fire-and-forget:
// failures are logged and never block or fail finalization.
func (e *ObjectEffects) PublishAlert(alert *service.Alert) {
	topic := e.Context.Config.AlertTopic
	if topic == "" {
		topic = constants.TopicAlerts
	}
	err := e.Context.NSQClient.PublishAlert(topic, alert)
	if err != nil {
		e.Context.Logger.Errorf("Cannot publish %s alert for %s/%s: %v",
			alert.Type, alert.Bucket, alert.Key, err)
	} else {
		e.Context.Logger.Infof("Published %s alert for %s/%s",
			alert.Type, alert.Bucket, alert.Key)
	}
}

// PublishScanError alerts operators that a scanner could not produce
// a real verdict. The error verdict never promotes or quarantines
// anything by itself, so this alert is the operator's cue to find out
// why the scan is failing before the stuck threshold forces a
// decision.
func (e *ObjectEffects) PublishScanError(event *service.UploadEvent, producerField string, cause error) {
	alert := service.NewAlert(constants.AlertScanError, event.Bucket, event.Key)
	alert.Verdicts = fmt.Sprintf("%s=%s", producerField, constants.VerdictError)
	alert.Detail = cause.Error()
	e.PublishAlert(alert)
}
