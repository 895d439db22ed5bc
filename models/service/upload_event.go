package service

import (
	"encoding/json"
	"fmt"

	"github.com/mediasafe/media-scan-services/util"
)

// UploadEvent describes an object-created notification from the
// object store. Delivery is at-least-once and may arrive out of order
// relative to other objects, so everything downstream of this event
// must tolerate duplicates.
type UploadEvent struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}

func NewUploadEvent(bucket, key string, size int64) *UploadEvent {
	return &UploadEvent{
		Bucket: bucket,
		Key:    key,
		Size:   size,
	}
}

func UploadEventFromJSON(jsonData string) (*UploadEvent, error) {
	event := &UploadEvent{}
	err := json.Unmarshal([]byte(jsonData), event)
	if err != nil {
		return nil, err
	}
	if event.Bucket == "" || event.Key == "" {
		return nil, fmt.Errorf("upload event is missing bucket or key: %s", jsonData)
	}
	return event, nil
}

func (e *UploadEvent) ToJSON() (string, error) {
	bytes, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// IsStaged returns true if this object was uploaded to the staging
// prefix and therefore needs a joint scan decision before it becomes
// publicly visible. Objects outside the prefix take the direct path.
func (e *UploadEvent) IsStaged() bool {
	return util.IsStagedKey(e.Key)
}

// FinalKey is the public key this object gets if promoted.
func (e *UploadEvent) FinalKey() string {
	return util.FinalKey(e.Key)
}

// Ext returns the object's lowercase file extension without the dot.
func (e *UploadEvent) Ext() string {
	return util.KeyExt(e.Key)
}

func (e *UploadEvent) String() string {
	return fmt.Sprintf("%s/%s (%d bytes)", e.Bucket, e.Key, e.Size)
}
