package scan_test

import (
	ctx "context"
	"fmt"
	"testing"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/scan"
	"github.com/mediasafe/media-scan-services/util/testutil"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNoSuchKey(t *testing.T) {
	assert.False(t, scan.IsNoSuchKey(nil))
	assert.False(t, scan.IsNoSuchKey(fmt.Errorf("connection refused")))

	context, _, _ := getTestContext(t)
	client := context.S3Clients[constants.StorageProviderAWS]
	_, err := client.StatObject(ctx.Background(), testutil.StagingBucket,
		"no/such/key.png", minio.StatObjectOptions{})
	assert.True(t, scan.IsNoSuchKey(err))
}

func TestCopyObject(t *testing.T) {
	context, _, _ := getTestContext(t)
	effects := scan.NewObjectEffects(context)
	key := "pending-scan/img.png"
	require.Nil(t, testutil.PutObject(context, testutil.StagingBucket, key, testutil.PNGHeader))

	err := effects.CopyObject(testutil.StagingBucket, key, testutil.PublicBucket, "img.png")
	require.Nil(t, err)
	assert.True(t, testutil.ObjectExists(context, testutil.PublicBucket, "img.png"))
	assert.True(t, testutil.ObjectExists(context, testutil.StagingBucket, key))
}

func TestCopyObjectSourceGoneDestPresent(t *testing.T) {
	context, _, _ := getTestContext(t)
	effects := scan.NewObjectEffects(context)
	key := "pending-scan/img.png"
	require.Nil(t, testutil.PutObject(context, testutil.StagingBucket, key, testutil.PNGHeader))

	require.Nil(t, effects.CopyObject(testutil.StagingBucket, key, testutil.PublicBucket, "img.png"))
	require.Nil(t, effects.DeleteObject(testutil.StagingBucket, key))

	// A crashed finalizer leaves exactly this state. Repeating the
	// copy must succeed.
	err := effects.CopyObject(testutil.StagingBucket, key, testutil.PublicBucket, "img.png")
	assert.Nil(t, err)
}

func TestCopyObjectBothMissing(t *testing.T) {
	context, _, _ := getTestContext(t)
	effects := scan.NewObjectEffects(context)

	err := effects.CopyObject(testutil.StagingBucket, "pending-scan/ghost.png",
		"no-such-bucket", "ghost.png")
	assert.NotNil(t, err)
}

func TestDeleteObjectIdempotent(t *testing.T) {
	context, _, _ := getTestContext(t)
	effects := scan.NewObjectEffects(context)
	key := "pending-scan/img.png"
	require.Nil(t, testutil.PutObject(context, testutil.StagingBucket, key, testutil.PNGHeader))

	assert.Nil(t, effects.DeleteObject(testutil.StagingBucket, key))
	assert.False(t, testutil.ObjectExists(context, testutil.StagingBucket, key))
	assert.Nil(t, effects.DeleteObject(testutil.StagingBucket, key))
}

func TestPublishAlert(t *testing.T) {
	context, _, nsqServer := getTestContext(t)
	effects := scan.NewObjectEffects(context)

	alert := service.NewAlert(constants.AlertScanError, testutil.StagingBucket, "pending-scan/img.png")
	alert.Detail = "scanner exploded"
	effects.PublishAlert(alert)

	messages := nsqServer.Messages(constants.TopicAlerts)
	require.Equal(t, 1, len(messages))
	restored, err := service.AlertFromJSON(messages[0])
	require.Nil(t, err)
	assert.Equal(t, constants.AlertScanError, restored.Type)
	assert.Equal(t, "scanner exploded", restored.Detail)
}
