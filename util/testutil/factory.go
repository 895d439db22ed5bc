package testutil

import (
	"bytes"
	ctx "context"
	"time"

	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/network"
	"github.com/minio/minio-go/v7"
)

var Bloomsday, _ = time.Parse(time.RFC3339, "1904-06-16T15:04:05Z")

// PNGHeader is a valid png signature followed by filler, long enough
// to satisfy any range read the byte scanner performs.
var PNGHeader = []byte("\x89PNG\r\n\x1a\x0a[filler bytes for tests]")

func GetUploadEvent(key string, size int64) *service.UploadEvent {
	return service.NewUploadEvent(StagingBucket, key, size)
}

func GetScanRecord(objectKey string) *service.ScanRecord {
	return &service.ScanRecord{
		ObjectKey:     objectKey,
		Bucket:        StagingBucket,
		ScanCount:     0,
		ExpectedCount: 2,
		CreatedAt:     time.Now().UTC(),
		ExpiresAt:     time.Now().UTC().Add(1 * time.Hour),
	}
}

// PutObject writes content into the named bucket through the
// context's S3 client.
func PutObject(context *common.Context, bucket, key string, content []byte) error {
	client := context.S3Clients["AWS"]
	_, err := client.PutObject(
		ctx.Background(),
		bucket,
		key,
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return err
}

// ObjectExists reports whether bucket/key is present.
func ObjectExists(context *common.Context, bucket, key string) bool {
	client := context.S3Clients["AWS"]
	_, err := client.StatObject(ctx.Background(), bucket, key, minio.StatObjectOptions{})
	return err == nil
}

// StubClassifier implements scan.Classifier with a canned result.
type StubClassifier struct {
	Result *network.ModerationResult
	Err    error
}

func (c *StubClassifier) Classify(bucket, key string) (*network.ModerationResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Result, nil
}
