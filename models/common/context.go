package common

import (
	ctx "context"
	"fmt"

	"github.com/mediasafe/media-scan-services/network"
	"github.com/mediasafe/media-scan-services/util/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// Context contains the config plus connections to every external
// collaborator a scan worker talks to: the coordination store (Redis),
// the event/alert transport (NSQ), the content classifier, and one
// S3 client per storage provider.
type Context struct {
	Config           *Config
	Logger           *logging.Logger
	ModerationClient *network.ModerationClient
	NSQClient        network.NSQClientInterface
	RedisClient      *network.RedisClient
	S3Clients        map[string]*minio.Client
}

func NewContext() *Context {
	config := NewConfig()
	_logger := getLogger(config)
	return &Context{
		Config:           config,
		Logger:           _logger,
		ModerationClient: getModerationClient(config),
		NSQClient:        getNsqClient(config),
		RedisClient:      getRedisClient(config),
		S3Clients:        getS3Clients(config),
	}
}

func getLogger(config *Config) *logging.Logger {
	logger, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	return logger
}

func getNsqClient(config *Config) network.NSQClientInterface {
	return network.NewNSQClient(config.NsqURL)
}

func getRedisClient(config *Config) *network.RedisClient {
	return network.NewRedisClient(
		config.RedisURL,
		config.RedisPassword,
		config.RedisDefaultDB)
}

func getModerationClient(config *Config) *network.ModerationClient {
	return network.NewModerationClient(
		config.ModerationServiceURL,
		config.ModerationAPIKey,
		config.ModerationTimeout)
}

func getS3Clients(config *Config) map[string]*minio.Client {
	s3Clients := make(map[string]*minio.Client, len(config.S3Credentials))
	useSSL := true
	if config.ConfigName == "dev" || config.ConfigName == "test" {
		useSSL = false // talking to localhost in dev and test
	}
	for provider, creds := range config.S3Credentials {
		client, err := minio.New(
			creds.Host,
			&minio.Options{
				Creds:  credentials.NewStaticV4(creds.KeyID, creds.SecretKey, ""),
				Secure: useSSL,
			})
		if err != nil {
			panic(err)
		}
		s3Clients[provider] = client
	}
	return s3Clients
}

func (context *Context) S3StatObject(provider, bucket, key string) (minio.ObjectInfo, error) {
	emptyInfo := minio.ObjectInfo{}
	client := context.S3Clients[provider]
	if client == nil {
		return emptyInfo, fmt.Errorf("No S3 client for provider %s", provider)
	}
	info, err := client.StatObject(ctx.Background(), bucket, key, minio.StatObjectOptions{})
	return info, err
}

func (context *Context) S3GetObject(provider, bucket, key string) (*minio.Object, error) {
	client := context.S3Clients[provider]
	if client == nil {
		return nil, fmt.Errorf("No S3 client for provider %s", provider)
	}
	return client.GetObject(ctx.Background(), bucket, key, minio.GetObjectOptions{})
}
