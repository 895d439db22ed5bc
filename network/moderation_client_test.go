package network_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mediasafe/media-scan-services/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moderationTestServer(t *testing.T, result *network.ModerationResult) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/classify", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		err := json.NewDecoder(r.Body).Decode(&req)
		require.Nil(t, err)
		assert.Equal(t, "staging", req["bucket"])
		assert.Equal(t, "pending-scan/img.png", req["key"])

		json.NewEncoder(w).Encode(result)
	}))
}

func TestModerationClassify(t *testing.T) {
	result := &network.ModerationResult{
		Labels: []network.ModerationLabel{
			{Name: "violence", Confidence: 0.32},
			{Name: "nudity", Confidence: 0.91},
		},
	}
	server := moderationTestServer(t, result)
	defer server.Close()

	client := network.NewModerationClient(server.URL, "test-key", 5*time.Second)
	got, err := client.Classify("staging", "pending-scan/img.png")
	require.Nil(t, err)
	require.Equal(t, 2, len(got.Labels))

	top := got.TopLabel()
	require.NotNil(t, top)
	assert.Equal(t, "nudity", top.Name)
	assert.Equal(t, 0.91, top.Confidence)
}

func TestModerationClassifyEmptyResult(t *testing.T) {
	server := moderationTestServer(t, &network.ModerationResult{})
	defer server.Close()

	client := network.NewModerationClient(server.URL, "test-key", 5*time.Second)
	got, err := client.Classify("staging", "pending-scan/img.png")
	require.Nil(t, err)
	assert.Nil(t, got.TopLabel())
}

func TestModerationClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "classifier overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := network.NewModerationClient(server.URL, "", 5*time.Second)
	_, err := client.Classify("staging", "pending-scan/img.png")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestTopLabel(t *testing.T) {
	result := &network.ModerationResult{}
	assert.Nil(t, result.TopLabel())

	result.Labels = []network.ModerationLabel{
		{Name: "weapons", Confidence: 0.11},
	}
	top := result.TopLabel()
	require.NotNil(t, top)
	assert.Equal(t, "weapons", top.Name)
}
