package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

// ModerationClient talks to the external content-classification
// service. The classifier is a collaborator: we hand it an object
// reference and get back labels with confidence scores. Mapping
// those onto a verdict is the moderation scanner's job, not ours.
type ModerationClient struct {
	ServiceURL string
	APIKey     string
	httpClient *http.Client
}

// ModerationLabel is one classification label with its confidence,
// in the range 0.0 to 1.0.
type ModerationLabel struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ModerationResult is the classifier's assessment of one object.
type ModerationResult struct {
	Labels []ModerationLabel `json:"labels"`
}

// TopLabel returns the highest-confidence label, or nil if the
// classifier found nothing to flag.
func (r *ModerationResult) TopLabel() *ModerationLabel {
	var top *ModerationLabel
	for i := range r.Labels {
		if top == nil || r.Labels[i].Confidence > top.Confidence {
			top = &r.Labels[i]
		}
	}
	return top
}

type moderationRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NewModerationClient returns a client for the moderation service at
// serviceURL. Timeout bounds the whole exchange; a classifier that
// hangs must surface as an error verdict, never as a stuck scanner.
func NewModerationClient(serviceURL, apiKey string, timeout time.Duration) *ModerationClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ModerationClient{
		ServiceURL: serviceURL,
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Classify asks the moderation service to classify the object at
// bucket/key. The service fetches the bytes itself; we only send the
// reference.
func (client *ModerationClient) Classify(bucket, key string) (*ModerationResult, error) {
	reqBody, err := json.Marshal(moderationRequest{Bucket: bucket, Key: key})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1/classify", client.ServiceURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if client.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+client.APIKey)
	}
	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Moderation service request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		bodyText := "[no response body]"
		if len(body) > 0 {
			bodyText = string(body)
		}
		return nil, fmt.Errorf("Moderation service returned status %d: %s",
			resp.StatusCode, bodyText)
	}
	result := &ModerationResult{}
	err = json.Unmarshal(body, result)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse moderation response: %v", err)
	}
	return result, nil
}
