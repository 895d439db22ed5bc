package testutil

import (
	"time"

	"github.com/alicebob/miniredis/v2"
)

type RedisServer struct {
	server *miniredis.Miniredis
}

func NewRedisServer() *RedisServer {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return &RedisServer{
		server: server,
	}
}

func (s *RedisServer) Addr() string {
	return s.server.Addr()
}

// FastForward moves the server's clock, so tests can expire
// records and queued marks without sleeping.
func (s *RedisServer) FastForward(d time.Duration) {
	s.server.FastForward(d)
}

// HSet writes a hash field directly, bypassing the atomic merge.
// Tests use this to age records into the sweeper's stuck window.
func (s *RedisServer) HSet(key, field, value string) {
	s.server.HSet(key, field, value)
}

// TTL returns the remaining time to live for key.
func (s *RedisServer) TTL(key string) time.Duration {
	return s.server.TTL(key)
}

func (s *RedisServer) Close() {
	s.server.Close()
}
