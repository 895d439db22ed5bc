package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Alert is the structured message we publish to the operator alert
// topic. Publishing is fire-and-forget: a failed publish is logged
// and never blocks finalization.
type Alert struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type"`
	Bucket             string    `json:"bucket"`
	Key                string    `json:"key"`
	Verdicts           string    `json:"verdicts,omitempty"`
	QuarantineLocation string    `json:"quarantine_location,omitempty"`
	Detail             string    `json:"detail,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

func NewAlert(alertType, bucket, key string) *Alert {
	return &Alert{
		ID:        uuid.New().String(),
		Type:      alertType,
		Bucket:    bucket,
		Key:       key,
		Timestamp: time.Now().UTC(),
	}
}

func AlertFromJSON(jsonData string) (*Alert, error) {
	alert := &Alert{}
	err := json.Unmarshal([]byte(jsonData), alert)
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func (a *Alert) ToJSON() (string, error) {
	bytes, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
