package testutil

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
)

// NSQServer fakes nsqd's HTTP /pub endpoint and records what was
// published to each topic, so tests can assert on alerts and queued
// events without a running broker.
type NSQServer struct {
	server   *httptest.Server
	mutex    sync.Mutex
	messages map[string][]string
}

func NewNSQServer() *NSQServer {
	s := &NSQServer{
		messages: make(map[string][]string),
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pub" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		topic := r.URL.Query().Get("topic")
		body, _ := ioutil.ReadAll(r.Body)
		r.Body.Close()
		s.mutex.Lock()
		s.messages[topic] = append(s.messages[topic], string(body))
		s.mutex.Unlock()
		w.Write([]byte("OK"))
	}))
	return s
}

func (s *NSQServer) URL() string {
	return s.server.URL
}

// Messages returns everything published to topic, in order.
func (s *NSQServer) Messages(topic string) []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	messages := make([]string, len(s.messages[topic]))
	copy(messages, s.messages[topic])
	return messages
}

func (s *NSQServer) Close() {
	s.server.Close()
}
