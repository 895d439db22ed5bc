package testutil

import (
	"io/ioutil"
	"strings"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/network"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// DiscardLogger returns a logger whose output goes nowhere. Test
// assertions care about state, not log lines.
func DiscardLogger() *logging.Logger {
	log := logging.MustGetLogger("test")
	backend := logging.NewLogBackend(ioutil.Discard, "", 0)
	logging.SetBackend(backend)
	return log
}

// NewTestContext builds a Context wired to in-process servers instead
// of real services. Callers own the servers' lifecycles.
func NewTestContext(redisAddr, s3URL, nsqURL string) *common.Context {
	config := &common.Config{
		ConfigName:       "test",
		AlertTopic:       constants.TopicAlerts,
		MaxFileSize:      int64(500 * 1024 * 1024),
		PublicBucket:     PublicBucket,
		QuarantineBucket: QuarantineBucket,
		StagingBucket:    StagingBucket,
		ScanRecordTTL:    1 * time.Hour,
		StuckThreshold:   10 * time.Minute,
		SweepInterval:    15 * time.Minute,
	}
	return &common.Context{
		Config:      config,
		Logger:      DiscardLogger(),
		NSQClient:   network.NewNSQClient(nsqURL),
		RedisClient: network.NewRedisClient(redisAddr, "", 0),
		S3Clients: map[string]*minio.Client{
			constants.StorageProviderAWS: newS3Client(s3URL),
		},
	}
}

func newS3Client(s3URL string) *minio.Client {
	endpoint := strings.TrimPrefix(s3URL, "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4("YOUR-ACCESSKEYID", "YOUR-SECRETACCESSKEY", ""),
		Secure:       false,
		Region:       "us-east-1",
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		panic(err)
	}
	return client
}
