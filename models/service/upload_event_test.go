package service_test

import (
	"testing"

	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUploadEvent(t *testing.T) {
	event := service.NewUploadEvent("staging", "pending-scan/img.png", int64(2048))
	assert.Equal(t, "staging", event.Bucket)
	assert.Equal(t, "pending-scan/img.png", event.Key)
	assert.EqualValues(t, 2048, event.Size)
}

func TestUploadEventFromJSON(t *testing.T) {
	data := `{"bucket":"staging","key":"pending-scan/img.png","size":2048}`
	event, err := service.UploadEventFromJSON(data)
	require.Nil(t, err)
	assert.Equal(t, "staging", event.Bucket)
	assert.Equal(t, "pending-scan/img.png", event.Key)
	assert.EqualValues(t, 2048, event.Size)

	_, err = service.UploadEventFromJSON("this is not json")
	assert.NotNil(t, err)

	_, err = service.UploadEventFromJSON(`{"bucket":"staging","size":10}`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing bucket or key")

	_, err = service.UploadEventFromJSON(`{"key":"pending-scan/img.png"}`)
	assert.NotNil(t, err)
}

func TestUploadEventToJSON(t *testing.T) {
	event := service.NewUploadEvent("staging", "pending-scan/img.png", int64(2048))
	data, err := event.ToJSON()
	require.Nil(t, err)

	restored, err := service.UploadEventFromJSON(data)
	require.Nil(t, err)
	assert.Equal(t, event.Bucket, restored.Bucket)
	assert.Equal(t, event.Key, restored.Key)
	assert.Equal(t, event.Size, restored.Size)
}

func TestUploadEventIsStaged(t *testing.T) {
	event := service.NewUploadEvent("staging", "pending-scan/img.png", int64(10))
	assert.True(t, event.IsStaged())

	event.Key = "avatars/img.png"
	assert.False(t, event.IsStaged())
}

func TestUploadEventFinalKey(t *testing.T) {
	event := service.NewUploadEvent("staging", "pending-scan/user/42/img.png", int64(10))
	assert.Equal(t, "user/42/img.png", event.FinalKey())
}

func TestUploadEventExt(t *testing.T) {
	event := service.NewUploadEvent("staging", "pending-scan/img.PNG", int64(10))
	assert.Equal(t, "png", event.Ext())

	event.Key = "pending-scan/README"
	assert.Equal(t, "", event.Ext())
}

func TestUploadEventString(t *testing.T) {
	event := service.NewUploadEvent("staging", "pending-scan/img.png", int64(2048))
	assert.Equal(t, "staging/pending-scan/img.png (2048 bytes)", event.String())
}
