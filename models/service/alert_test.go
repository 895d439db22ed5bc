package service_test

import (
	"testing"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlert(t *testing.T) {
	alert := service.NewAlert(constants.AlertMalwareDetected, "staging", "pending-scan/evil.exe")
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, constants.AlertMalwareDetected, alert.Type)
	assert.Equal(t, "staging", alert.Bucket)
	assert.Equal(t, "pending-scan/evil.exe", alert.Key)
	assert.False(t, alert.Timestamp.IsZero())
}

func TestAlertToJSONFromJSON(t *testing.T) {
	alert := service.NewAlert(constants.AlertQuarantineFailed, "staging", "pending-scan/clip.mp4")
	alert.Verdicts = "byte_scan_verdict=quarantine, moderation_verdict=passed"
	alert.Detail = "copy failed"

	data, err := alert.ToJSON()
	require.Nil(t, err)

	restored, err := service.AlertFromJSON(data)
	require.Nil(t, err)
	assert.Equal(t, alert.ID, restored.ID)
	assert.Equal(t, alert.Type, restored.Type)
	assert.Equal(t, alert.Bucket, restored.Bucket)
	assert.Equal(t, alert.Key, restored.Key)
	assert.Equal(t, alert.Verdicts, restored.Verdicts)
	assert.Equal(t, alert.Detail, restored.Detail)
}
