package service_test

import (
	"testing"
	"time"

	"github.com/mediasafe/media-scan-services/constants"
	"github.com/mediasafe/media-scan-services/models/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getScanRecordHash() map[string]string {
	return map[string]string{
		service.HashFieldBucket:        "staging",
		service.HashFieldScanCount:     "2",
		service.HashFieldExpectedCount: "2",
		service.HashFieldCreatedAt:     "2026-02-10T15:04:05Z",
		service.HashFieldExpiresAt:     "2026-02-10T16:04:05Z",
		constants.FieldByteScan:        constants.VerdictPassed,
		constants.FieldModeration:      constants.VerdictReview,
	}
}

func TestScanRecordFromHash(t *testing.T) {
	record, err := service.ScanRecordFromHash("pending-scan/img.png", getScanRecordHash())
	require.Nil(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "pending-scan/img.png", record.ObjectKey)
	assert.Equal(t, "staging", record.Bucket)
	assert.Equal(t, constants.VerdictPassed, record.ByteScanVerdict)
	assert.Equal(t, constants.VerdictReview, record.ModerationVerdict)
	assert.Equal(t, 2, record.ScanCount)
	assert.Equal(t, 2, record.ExpectedCount)
	assert.Equal(t, 2026, record.CreatedAt.Year())
	assert.True(t, record.ExpiresAt.After(record.CreatedAt))
}

func TestScanRecordFromHashPartial(t *testing.T) {
	// First write from a single scanner: no moderation verdict yet.
	hash := getScanRecordHash()
	delete(hash, constants.FieldModeration)
	hash[service.HashFieldScanCount] = "1"

	record, err := service.ScanRecordFromHash("pending-scan/img.png", hash)
	require.Nil(t, err)
	assert.Equal(t, "", record.ModerationVerdict)
	assert.Equal(t, constants.VerdictMissing, record.VerdictFor(constants.FieldModeration))
	assert.Equal(t, 1, record.ScanCount)
	assert.False(t, record.Complete())
}

func TestScanRecordFromHashBadValues(t *testing.T) {
	hash := getScanRecordHash()
	hash[service.HashFieldScanCount] = "two"
	_, err := service.ScanRecordFromHash("key", hash)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), service.HashFieldScanCount)

	hash = getScanRecordHash()
	hash[service.HashFieldCreatedAt] = "yesterday"
	_, err = service.ScanRecordFromHash("key", hash)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), service.HashFieldCreatedAt)
}

func TestScanRecordComplete(t *testing.T) {
	record := &service.ScanRecord{ScanCount: 1, ExpectedCount: 2}
	assert.False(t, record.Complete())

	record.ScanCount = 2
	assert.True(t, record.Complete())

	// Redelivered verdicts can push the count past the barrier.
	record.ScanCount = 3
	assert.True(t, record.Complete())

	// A record with no expected count is never complete.
	record = &service.ScanRecord{ScanCount: 1, ExpectedCount: 0}
	assert.False(t, record.Complete())
}

func TestScanRecordVerdictFor(t *testing.T) {
	record := &service.ScanRecord{
		ByteScanVerdict: constants.VerdictPassed,
	}
	assert.Equal(t, constants.VerdictPassed, record.VerdictFor(constants.FieldByteScan))
	assert.Equal(t, constants.VerdictMissing, record.VerdictFor(constants.FieldModeration))
	assert.Equal(t, constants.VerdictMissing, record.VerdictFor("no_such_field"))
}

func TestScanRecordDisposition(t *testing.T) {
	// Quarantine dominates regardless of what the other scanner said
	// or whether it said anything at all.
	quarantineCases := []struct {
		byteScan   string
		moderation string
	}{
		{constants.VerdictQuarantine, constants.VerdictQuarantine},
		{constants.VerdictQuarantine, constants.VerdictPassed},
		{constants.VerdictQuarantine, constants.VerdictReview},
		{constants.VerdictQuarantine, constants.VerdictError},
		{constants.VerdictQuarantine, ""},
		{constants.VerdictPassed, constants.VerdictQuarantine},
		{constants.VerdictError, constants.VerdictQuarantine},
		{"", constants.VerdictQuarantine},
	}
	for _, tc := range quarantineCases {
		record := &service.ScanRecord{
			ByteScanVerdict:   tc.byteScan,
			ModerationVerdict: tc.moderation,
		}
		assert.Equal(t, constants.DispositionQuarantine, record.Disposition(),
			"byte_scan=%q moderation=%q", tc.byteScan, tc.moderation)
	}

	// No quarantine verdict means promote. Error and missing withhold
	// a positive signal but never block on their own.
	promoteCases := []struct {
		byteScan   string
		moderation string
	}{
		{constants.VerdictPassed, constants.VerdictPassed},
		{constants.VerdictPassed, constants.VerdictReview},
		{constants.VerdictPassed, constants.VerdictError},
		{constants.VerdictPassed, ""},
		{constants.VerdictError, constants.VerdictError},
		{constants.VerdictError, ""},
		{"", ""},
	}
	for _, tc := range promoteCases {
		record := &service.ScanRecord{
			ByteScanVerdict:   tc.byteScan,
			ModerationVerdict: tc.moderation,
		}
		assert.Equal(t, constants.DispositionPromote, record.Disposition(),
			"byte_scan=%q moderation=%q", tc.byteScan, tc.moderation)
	}
}

func TestScanRecordModerationTag(t *testing.T) {
	record := &service.ScanRecord{ModerationVerdict: constants.VerdictReview}
	assert.Equal(t, constants.ModerationUnderReview, record.ModerationTag())

	record.ModerationVerdict = constants.VerdictPassed
	assert.Equal(t, constants.ModerationClean, record.ModerationTag())

	record.ModerationVerdict = constants.VerdictError
	assert.Equal(t, constants.ModerationClean, record.ModerationTag())

	record.ModerationVerdict = ""
	assert.Equal(t, constants.ModerationClean, record.ModerationTag())
}

func TestScanRecordContributingVerdicts(t *testing.T) {
	record := &service.ScanRecord{
		ByteScanVerdict: constants.VerdictQuarantine,
	}
	assert.Equal(t,
		"byte_scan_verdict=quarantine, moderation_verdict=missing",
		record.ContributingVerdicts())
}

func TestScanRecordIsStuck(t *testing.T) {
	now := time.Now().UTC()
	threshold := 10 * time.Minute

	record := &service.ScanRecord{
		ScanCount:     1,
		ExpectedCount: 2,
		CreatedAt:     now.Add(-2 * time.Minute),
	}
	assert.False(t, record.IsStuck(threshold, now))

	record.CreatedAt = now.Add(-15 * time.Minute)
	assert.True(t, record.IsStuck(threshold, now))

	// A complete record with a real verdict is never stuck, only
	// late to clean up.
	record.ScanCount = 2
	record.ByteScanVerdict = constants.VerdictPassed
	assert.False(t, record.IsStuck(threshold, now))

	// A complete record holding nothing but errors can't resolve on
	// the normal path, so it is stuck once the threshold passes.
	record.ByteScanVerdict = constants.VerdictError
	assert.True(t, record.IsStuck(threshold, now))

	// A record with no creation time can't be judged stuck.
	record = &service.ScanRecord{ScanCount: 1, ExpectedCount: 2}
	assert.False(t, record.IsStuck(threshold, now))
}

func TestScanRecordInconclusive(t *testing.T) {
	cases := []struct {
		byteScan     string
		moderation   string
		inconclusive bool
	}{
		{"", "", true},
		{constants.VerdictError, "", true},
		{"", constants.VerdictError, true},
		{constants.VerdictError, constants.VerdictError, true},
		{constants.VerdictPassed, "", false},
		{constants.VerdictPassed, constants.VerdictError, false},
		{constants.VerdictError, constants.VerdictReview, false},
		{constants.VerdictQuarantine, constants.VerdictError, false},
	}
	for _, tc := range cases {
		record := &service.ScanRecord{
			ByteScanVerdict:   tc.byteScan,
			ModerationVerdict: tc.moderation,
		}
		assert.Equal(t, tc.inconclusive, record.Inconclusive(),
			"byte_scan=%q moderation=%q", tc.byteScan, tc.moderation)
	}
}

func TestScanRecordToJSONFromJSON(t *testing.T) {
	record, err := service.ScanRecordFromHash("pending-scan/img.png", getScanRecordHash())
	require.Nil(t, err)

	data, err := record.ToJSON()
	require.Nil(t, err)

	restored, err := service.ScanRecordFromJSON(data)
	require.Nil(t, err)
	assert.Equal(t, record.ObjectKey, restored.ObjectKey)
	assert.Equal(t, record.Bucket, restored.Bucket)
	assert.Equal(t, record.ByteScanVerdict, restored.ByteScanVerdict)
	assert.Equal(t, record.ModerationVerdict, restored.ModerationVerdict)
	assert.Equal(t, record.ScanCount, restored.ScanCount)
	assert.Equal(t, record.ExpectedCount, restored.ExpectedCount)
}
