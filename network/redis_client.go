package network

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/service"
)

// RedisClient is the coordination store client. The scan record for
// each in-flight object lives in a Redis hash under
// "scan:<objectKey>", and MergeVerdict is the only write path for
// verdicts. There is deliberately no plain read-modify-write: two
// scanners race on the same key, and only an atomic merge lets each
// of them see a distinct, correctly incremented scan count.
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(address, password string, db int) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

// MergeVerdict records one scanner's verdict in the shared record for
// objectKey and returns the merged record as it stands immediately
// after the update. The whole merge runs as one MULTI/EXEC
// transaction: the fixed fields (bucket, created_at, expected_count)
// are set only if absent, so the first writer wins and they never
// change for the life of the record; the producer field is set; the
// scan count is incremented; the safety-window expiry is refreshed;
// and the trailing HGETALL reads the merged state from inside the
// same transaction. The returned ScanCount is this caller's view of
// the completion barrier: exactly one caller per record sees it cross
// ExpectedCount.
func (c *RedisClient) MergeVerdict(objectKey, bucket, producerField, verdict string, expectedCount int, ttl time.Duration) (*service.ScanRecord, error) {
	key := constants.ScanRecordKeyPrefix + objectKey
	now := time.Now().UTC()
	var merged *redis.StringStringMapCmd
	_, err := c.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.HSetNX(key, service.HashFieldBucket, bucket)
		pipe.HSetNX(key, service.HashFieldCreatedAt, now.Format(time.RFC3339))
		pipe.HSetNX(key, service.HashFieldExpectedCount, expectedCount)
		pipe.HSet(key, producerField, verdict)
		pipe.HSet(key, service.HashFieldExpiresAt, now.Add(ttl).Format(time.RFC3339))
		pipe.HIncrBy(key, service.HashFieldScanCount, 1)
		pipe.Expire(key, ttl)
		merged = pipe.HGetAll(key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("MergeVerdict (%s, %s=%s): %s",
			objectKey, producerField, verdict, err.Error())
	}
	return service.ScanRecordFromHash(objectKey, merged.Val())
}

// ScanRecordGet returns the record for objectKey, or nil if no record
// exists. A missing record is not an error: it usually means some
// other caller already finalized the object.
func (c *RedisClient) ScanRecordGet(objectKey string) (*service.ScanRecord, error) {
	key := constants.ScanRecordKeyPrefix + objectKey
	hash, err := c.client.HGetAll(key).Result()
	if err != nil {
		return nil, fmt.Errorf("ScanRecordGet (%s): %s", objectKey, err.Error())
	}
	if len(hash) == 0 {
		return nil, nil
	}
	return service.ScanRecordFromHash(objectKey, hash)
}

// ScanRecords returns all live scan records. Only the sweeper calls
// this. Records that disappear between the SCAN and the HGETALL were
// finalized by someone else and are skipped.
func (c *RedisClient) ScanRecords() ([]*service.ScanRecord, error) {
	records := make([]*service.ScanRecord, 0)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(cursor, constants.ScanRecordKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("ScanRecords: %s", err.Error())
		}
		for _, key := range keys {
			hash, err := c.client.HGetAll(key).Result()
			if err != nil {
				return nil, fmt.Errorf("ScanRecords (%s): %s", key, err.Error())
			}
			if len(hash) == 0 {
				continue
			}
			objectKey := strings.TrimPrefix(key, constants.ScanRecordKeyPrefix)
			record, err := service.ScanRecordFromHash(objectKey, hash)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return records, nil
}

func (c *RedisClient) ScanRecordDelete(objectKey string) error {
	key := constants.ScanRecordKeyPrefix + objectKey
	_, err := c.client.Del(key).Result()
	return err
}

// QueueOnce marks objectKey as queued and returns true if this caller
// set the mark. The bucket reader uses this to avoid re-enqueueing
// events for staged objects it has already seen. This is best-effort
// dedup only: the protocol tolerates duplicate events regardless.
func (c *RedisClient) QueueOnce(objectKey string, ttl time.Duration) (bool, error) {
	return c.client.SetNX("queued:"+objectKey, 1, ttl).Result()
}
