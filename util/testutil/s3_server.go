package testutil

import (
	"net/http/httptest"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

const StagingBucket = "staging"
const PublicBucket = "public"
const QuarantineBucket = "quarantine"

type S3Server struct {
	server *httptest.Server
	URL    string
}

func NewS3Server() *S3Server {
	backend := s3mem.New()
	backend.CreateBucket(StagingBucket)
	backend.CreateBucket(PublicBucket)
	backend.CreateBucket(QuarantineBucket)
	faker := gofakes3.New(backend)
	server := httptest.NewServer(faker.Server())
	return &S3Server{
		server: server,
		URL:    server.URL,
	}
}

func (s *S3Server) Close() {
	s.server.Close()
}
