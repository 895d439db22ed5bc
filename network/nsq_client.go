package network

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/mediasafe/media-scan-services/models/service"
)

type NSQClient struct {
	URL string
}

// Formally define this so we can generate mocks for testing.
type NSQClientInterface interface {
	EnqueueEvent(topic string, event *service.UploadEvent) error
	PublishAlert(topic string, alert *service.Alert) error
}

// NewNSQClient returns a new NSQ client that will connect to the NSQ
// server at the specified url. The URL is typically available through
// Config.NsqURL, and usually ends with :4151. This is the URL to
// which we post upload events and alerts; the scan workers do the
// reading through consumers.
func NewNSQClient(url string) *NSQClient {
	return &NSQClient{URL: url}
}

// EnqueueEvent posts an upload event to the named topic. Both scanner
// topics get the same event when an object lands in staging.
func (client *NSQClient) EnqueueEvent(topic string, event *service.UploadEvent) error {
	data, err := event.ToJSON()
	if err != nil {
		return err
	}
	return client.enqueueString(topic, data)
}

// PublishAlert posts an operator alert to the named topic.
func (client *NSQClient) PublishAlert(topic string, alert *service.Alert) error {
	data, err := alert.ToJSON()
	if err != nil {
		return err
	}
	return client.enqueueString(topic, data)
}

// enqueueString posts string data to the specified NSQ topic.
func (client *NSQClient) enqueueString(topic string, data string) error {
	url := fmt.Sprintf("%s/pub?topic=%s", client.URL, topic)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer([]byte(data)))
	if err != nil {
		return fmt.Errorf("Nsqd returned an error when queuing data: %v", err)
	}
	if resp == nil {
		return fmt.Errorf("No response from nsqd at '%s'. Is it running?", url)
	}

	// nsqd sends a simple OK. We have to read the response body,
	// or the connection will hang open forever.
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != 200 {
		bodyText := "[no response body]"
		if len(body) > 0 {
			bodyText = string(body)
		}
		return fmt.Errorf("nsqd returned status code %d when attempting to queue data. "+
			"Response body: %s", resp.StatusCode, bodyText)
	}
	return nil
}
