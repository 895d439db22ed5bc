package workers_test

import (
	"testing"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/workers"
	"github.com/stretchr/testify/assert"
)

func TestToJSON(t *testing.T) {
	settings := &workers.Settings{
		ChannelBufferSize: 20,
		MaxAttempts:       3,
		NSQChannel:        constants.TopicByteScan + "_worker_chan",
		NSQTopic:          constants.TopicByteScan,
		NumberOfWorkers:   2,
		RequeueTimeout:    (1 * time.Minute),
	}
	assert.Equal(t, expectedJSON, settings.ToJSON())
}

var expectedJSON = `{"ChannelBufferSize":20,"MaxAttempts":3,"NSQChannel":"byte_scan_worker_chan","NSQTopic":"byte_scan","NumberOfWorkers":2,"RequeueTimeout":60000000000}`
