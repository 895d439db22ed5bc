package network_test

import (
	"testing"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/mediasafe/media-scan-services/network"
	"github.com/mediasafe/media-scan-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSQEnqueueEvent(t *testing.T) {
	server := testutil.NewNSQServer()
	defer server.Close()
	client := network.NewNSQClient(server.URL())

	event := service.NewUploadEvent("staging", "pending-scan/img.png", int64(2048))
	err := client.EnqueueEvent(constants.TopicByteScan, event)
	require.Nil(t, err)

	messages := server.Messages(constants.TopicByteScan)
	require.Equal(t, 1, len(messages))

	restored, err := service.UploadEventFromJSON(messages[0])
	require.Nil(t, err)
	assert.Equal(t, event.Bucket, restored.Bucket)
	assert.Equal(t, event.Key, restored.Key)
	assert.Equal(t, event.Size, restored.Size)
}

func TestNSQPublishAlert(t *testing.T) {
	server := testutil.NewNSQServer()
	defer server.Close()
	client := network.NewNSQClient(server.URL())

	alert := service.NewAlert(constants.AlertMalwareDetected, "staging", "pending-scan/evil.exe")
	err := client.PublishAlert(constants.TopicAlerts, alert)
	require.Nil(t, err)

	messages := server.Messages(constants.TopicAlerts)
	require.Equal(t, 1, len(messages))

	restored, err := service.AlertFromJSON(messages[0])
	require.Nil(t, err)
	assert.Equal(t, alert.ID, restored.ID)
	assert.Equal(t, constants.AlertMalwareDetected, restored.Type)
}

func TestNSQClientBadURL(t *testing.T) {
	client := network.NewNSQClient("http://localhost:1")
	event := service.NewUploadEvent("staging", "pending-scan/img.png", int64(10))
	err := client.EnqueueEvent(constants.TopicByteScan, event)
	assert.NotNil(t, err)
}
