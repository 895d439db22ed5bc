package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
)

// Hash field names under which the record is stored in Redis.
// The verdict fields are constants.FieldByteScan and
// constants.FieldModeration, since scanners pass those in by name.
const (
	HashFieldBucket        = "bucket"
	HashFieldScanCount     = "scan_count"
	HashFieldExpectedCount = "expected_count"
	HashFieldCreatedAt     = "created_at"
	HashFieldExpiresAt     = "expires_at"
)

// ScanRecord is the shared coordination record for one staged object.
// There is exactly one per in-flight object, created by whichever
// scanner reports first and deleted by whichever caller finalizes.
// ScanCount only ever increases; it is the completion barrier. The
// record is never read-then-blind-written: all mutation goes through
// RedisClient.MergeVerdict, which performs one atomic merge and
// returns the merged state.
type ScanRecord struct {
	ObjectKey         string    `json:"object_key"`
	Bucket            string    `json:"bucket"`
	ByteScanVerdict   string    `json:"byte_scan_verdict,omitempty"`
	ModerationVerdict string    `json:"moderation_verdict,omitempty"`
	ScanCount         int       `json:"scan_count"`
	ExpectedCount     int       `json:"expected_count"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// ScanRecordFromHash builds a ScanRecord from the Redis hash for
// objectKey. Absent verdict fields stay empty; VerdictFor reports
// them as missing.
func ScanRecordFromHash(objectKey string, hash map[string]string) (*ScanRecord, error) {
	record := &ScanRecord{
		ObjectKey:         objectKey,
		Bucket:            hash[HashFieldBucket],
		ByteScanVerdict:   hash[constants.FieldByteScan],
		ModerationVerdict: hash[constants.FieldModeration],
	}
	var err error
	if record.ScanCount, err = hashInt(hash, HashFieldScanCount); err != nil {
		return nil, err
	}
	if record.ExpectedCount, err = hashInt(hash, HashFieldExpectedCount); err != nil {
		return nil, err
	}
	if record.CreatedAt, err = hashTime(hash, HashFieldCreatedAt); err != nil {
		return nil, err
	}
	if record.ExpiresAt, err = hashTime(hash, HashFieldExpiresAt); err != nil {
		return nil, err
	}
	return record, nil
}

func hashInt(hash map[string]string, field string) (int, error) {
	value := hash[field]
	if value == "" {
		return 0, nil
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("scan record field %s has bad value %s", field, value)
	}
	return intVal, nil
}

func hashTime(hash map[string]string, field string) (time.Time, error) {
	value := hash[field]
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("scan record field %s has bad value %s", field, value)
	}
	return t, nil
}

func ScanRecordFromJSON(jsonData string) (*ScanRecord, error) {
	record := &ScanRecord{}
	err := json.Unmarshal([]byte(jsonData), record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *ScanRecord) ToJSON() (string, error) {
	bytes, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Complete returns true once the number of recorded verdicts has
// reached the number the first writer said to expect.
func (r *ScanRecord) Complete() bool {
	return r.ExpectedCount > 0 && r.ScanCount >= r.ExpectedCount
}

// VerdictFor returns the verdict recorded in the named producer
// field, or constants.VerdictMissing if that scanner never reported.
func (r *ScanRecord) VerdictFor(producerField string) string {
	var verdict string
	switch producerField {
	case constants.FieldByteScan:
		verdict = r.ByteScanVerdict
	case constants.FieldModeration:
		verdict = r.ModerationVerdict
	}
	if verdict == "" {
		return constants.VerdictMissing
	}
	return verdict
}

// Disposition applies the decision policy to whatever verdicts are
// present. Quarantine dominates: if either scanner said quarantine,
// the object is quarantined no matter what the other said. Error and
// missing never trigger quarantine on their own, but never mask a
// quarantine either. Everything else promotes. The policy is the
// same whether the record completed normally or is being forced by
// the sweeper; the caller tags forced promotions distinctly.
func (r *ScanRecord) Disposition() string {
	for _, field := range constants.ProducerFields {
		if r.VerdictFor(field) == constants.VerdictQuarantine {
			return constants.DispositionQuarantine
		}
	}
	return constants.DispositionPromote
}

// ModerationTag maps the moderation verdict to the tag value a
// promoted object carries. A review verdict flags the object for
// human follow-up; anything else, including missing, is clean.
func (r *ScanRecord) ModerationTag() string {
	verdict := r.VerdictFor(constants.FieldModeration)
	if verdict == constants.VerdictReview || verdict == constants.ModerationUnderReview {
		return constants.ModerationUnderReview
	}
	return constants.ModerationClean
}

// Inconclusive returns true when no scanner produced an affirmative
// verdict: everything present is error, and the rest is missing.
// An error verdict still crosses the completion barrier, but it
// carries no signal to promote or quarantine on.
func (r *ScanRecord) Inconclusive() bool {
	for _, field := range constants.ProducerFields {
		switch r.VerdictFor(field) {
		case constants.VerdictError, constants.VerdictMissing:
		default:
			return false
		}
	}
	return true
}

// ContributingVerdicts summarizes both producer fields for operator
// alerts, e.g. "byte_scan_verdict=quarantine, moderation_verdict=passed".
func (r *ScanRecord) ContributingVerdicts() string {
	return fmt.Sprintf("%s=%s, %s=%s",
		constants.FieldByteScan, r.VerdictFor(constants.FieldByteScan),
		constants.FieldModeration, r.VerdictFor(constants.FieldModeration))
}

// IsStuck returns true if this record cannot resolve on the normal
// path and is older than the stuck threshold, meaning the sweeper
// should force a decision from whatever's present. That covers both
// a scanner that never called back and a record whose only verdicts
// are errors.
func (r *ScanRecord) IsStuck(threshold time.Duration, now time.Time) bool {
	if r.Complete() && !r.Inconclusive() {
		return false
	}
	return !r.CreatedAt.IsZero() && now.Sub(r.CreatedAt) > threshold
}
