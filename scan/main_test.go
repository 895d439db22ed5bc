package scan_test

import (
	ctx "context"
	"testing"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/util/testutil"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

// getTestContext spins up in-process Redis, S3 and nsqd stand-ins and
// returns a context wired to all three. Servers are torn down when
// the test ends.
func getTestContext(t *testing.T) (*common.Context, *testutil.RedisServer, *testutil.NSQServer) {
	redisServer := testutil.NewRedisServer()
	s3Server := testutil.NewS3Server()
	nsqServer := testutil.NewNSQServer()
	t.Cleanup(func() {
		redisServer.Close()
		s3Server.Close()
		nsqServer.Close()
	})
	context := testutil.NewTestContext(redisServer.Addr(), s3Server.URL, nsqServer.URL())
	return context, redisServer, nsqServer
}

// getObjectTags returns the tag set on bucket/key as a plain map.
func getObjectTags(t *testing.T, context *common.Context, bucket, key string) map[string]string {
	client := context.S3Clients[constants.StorageProviderAWS]
	tagSet, err := client.GetObjectTagging(ctx.Background(), bucket, key, minio.GetObjectTaggingOptions{})
	require.Nil(t, err)
	return tagSet.ToMap()
}
