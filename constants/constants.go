package constants

const (
	AlertMalwareDetected  = "MALWARE_DETECTED"
	AlertQuarantineFailed = "QUARANTINE_FAILED"
	AlertScanError        = "SCAN_ERROR"
	DispositionPromote    = "promote"
	DispositionQuarantine = "quarantine"
	FieldByteScan         = "byte_scan_verdict"
	FieldModeration       = "moderation_verdict"
	MediaTypeAudio        = "audio"
	MediaTypeImage        = "image"
	MediaTypeUnknown      = "unknown"
	MediaTypeVideo        = "video"
	ModerationClean       = "clean"
	ModerationUnderReview = "under_review"
	QuarantinePrefix      = "quarantine/"
	ScanRecordKeyPrefix   = "scan:"
	StagingPrefix         = "pending-scan/"
	StatusPromotedLate    = "promoted-after-timeout"
	StatusQuarantined     = "quarantined"
	StatusScanned         = "scanned"
	StorageProviderAWS    = "AWS"
	StorageProviderLocal  = "Local"
	TagModeration         = "moderation"
	TagScanDate           = "scan-date"
	TagScanDetails        = "scan-details"
	TagScanStatus         = "scan-status"
	TopicAlerts           = "scan_alerts"
	TopicByteScan         = "byte_scan"
	TopicModeration       = "moderation_scan"
	VerdictError          = "error"
	VerdictMissing        = "missing"
	VerdictPassed         = "passed"
	VerdictQuarantine     = "quarantine"
	VerdictReview         = "review"
)

// Verdicts a scanner may record. VerdictMissing is never recorded;
// it's inferred at read time when a producer field was never set.
var Verdicts = []string{
	VerdictError,
	VerdictPassed,
	VerdictQuarantine,
	VerdictReview,
}

// ProducerFields are the coordination record fields a scanner may
// write its verdict into.
var ProducerFields = []string{
	FieldByteScan,
	FieldModeration,
}

// ScannerTopics are the NSQ topics that receive upload events.
// Every staged upload is fanned out to all of them.
var ScannerTopics = []string{
	TopicByteScan,
	TopicModeration,
}
