package common

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/util"
	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

type Config struct {
	AlertTopic                string
	BucketReaderInterval      time.Duration
	ConfigName                string
	LogDir                    string
	LogLevel                  logging.Level
	MaxFileSize               int64
	ModerationAPIKey          string
	ModerationBlockThreshold  float64
	ModerationReviewThreshold float64
	ModerationServiceURL      string
	ModerationTimeout         time.Duration
	NsqLookupd                string
	NsqURL                    string
	PublicBucket              string
	QuarantineBucket          string
	RedisDefaultDB            int
	RedisPassword             string
	RedisURL                  string
	S3Credentials             map[string]S3Credentials
	ScanRecordTTL             time.Duration
	StagingBucket             string
	StuckThreshold            time.Duration
	SweepInterval             time.Duration
}

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// Returns a new config based on ENV var MSS_SERVICES_CONFIG
func NewConfig() *Config {
	config := loadConfig()
	config.expandPaths()
	config.sanityCheck()
	config.makeDirs()
	return config
}

func loadConfig() *Config {
	configDir, envName := getEnvVars()
	v := viper.New()
	v.AddConfigPath(configDir)
	v.SetConfigName(".env." + envName)
	v.SetConfigType("env")
	err := v.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}
	return &Config{
		AlertTopic:                v.GetString("ALERT_TOPIC"),
		BucketReaderInterval:      v.GetDuration("BUCKET_READER_INTERVAL"),
		ConfigName:                envName,
		LogDir:                    v.GetString("LOG_DIR"),
		LogLevel:                  logLevels[v.GetString("LOG_LEVEL")],
		MaxFileSize:               v.GetInt64("MAX_FILE_SIZE"),
		ModerationAPIKey:          v.GetString("MODERATION_API_KEY"),
		ModerationBlockThreshold:  v.GetFloat64("MODERATION_BLOCK_THRESHOLD"),
		ModerationReviewThreshold: v.GetFloat64("MODERATION_REVIEW_THRESHOLD"),
		ModerationServiceURL:      v.GetString("MODERATION_SERVICE_URL"),
		ModerationTimeout:         v.GetDuration("MODERATION_TIMEOUT"),
		NsqLookupd:                v.GetString("NSQ_LOOKUPD"),
		NsqURL:                    v.GetString("NSQ_URL"),
		PublicBucket:              v.GetString("PUBLIC_BUCKET"),
		QuarantineBucket:          v.GetString("QUARANTINE_BUCKET"),
		RedisDefaultDB:            v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:             v.GetString("REDIS_PASSWORD"),
		RedisURL:                  v.GetString("REDIS_URL"),
		S3Credentials: map[string]S3Credentials{
			constants.StorageProviderAWS: S3Credentials{
				Host:      v.GetString("S3_AWS_HOST"),
				KeyID:     v.GetString("S3_AWS_KEY"),
				SecretKey: v.GetString("S3_AWS_SECRET"),
			},
			constants.StorageProviderLocal: S3Credentials{
				Host:      v.GetString("S3_LOCAL_HOST"),
				KeyID:     v.GetString("S3_LOCAL_KEY"),
				SecretKey: v.GetString("S3_LOCAL_SECRET"),
			},
		},
		ScanRecordTTL:  v.GetDuration("SCAN_RECORD_TTL"),
		StagingBucket:  v.GetString("STAGING_BUCKET"),
		StuckThreshold: v.GetDuration("STUCK_THRESHOLD"),
		SweepInterval:  v.GetDuration("SWEEP_INTERVAL"),
	}
}

func getEnvVars() (string, string) {
	configDir := getRequiredEnvVar("MSS_CONFIG_DIR")
	envName := getRequiredEnvVar("MSS_SERVICES_CONFIG")
	return configDir, envName
}

func getRequiredEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		panic(fmt.Sprintf("Required env var %s not set", varName))
	}
	return value
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() {
	c.LogDir = expandPath(c.LogDir)
}

func expandPath(dirName string) string {
	dir, err := util.ExpandTilde(dirName)
	if err != nil {
		panic(err)
	}
	return dir
}

// The scan record TTL and the stuck threshold bound how long an
// incomplete record can persist, so the system cannot run without
// them. The three buckets must be distinct, or the promote and
// quarantine copies would be no-ops that leave staged objects public.
func (c *Config) sanityCheck() {
	if c.ScanRecordTTL == 0 {
		panic("Config is missing SCAN_RECORD_TTL")
	}
	if c.StuckThreshold == 0 {
		panic("Config is missing STUCK_THRESHOLD")
	}
	if c.StagingBucket == "" || c.PublicBucket == "" || c.QuarantineBucket == "" {
		panic("Config must name staging, public, and quarantine buckets")
	}
	if c.StagingBucket == c.PublicBucket || c.StagingBucket == c.QuarantineBucket {
		panic(fmt.Sprintf("Staging bucket %s cannot double as public or quarantine", c.StagingBucket))
	}
}

func (c *Config) makeDirs() error {
	err := os.MkdirAll(c.LogDir, 0755)
	if err != nil {
		panic(err)
	}
	return nil
}

func (c *Config) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}
