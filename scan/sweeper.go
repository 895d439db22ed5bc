package scan

import (
	"time"

	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/models/service"
)

// Sweeper is the recovery path for coordination records that never
// resolved on their own: a scanner crashed, a message was lost, or a
// finalizer died between incrementing the counter and cleaning up.
// One run takes the store's current contents and the wall clock as
// its only inputs and retains no state between runs.
type Sweeper struct {
	Context *common.Context
}

func NewSweeper(context *common.Context) *Sweeper {
	return &Sweeper{Context: context}
}

// Run makes one pass over all live scan records. Records that are
// complete with at least one real verdict get finalized (the original
// finalizer crashed before cleanup). Records older than the stuck
// threshold that can't resolve normally, because a scanner never
// reported or because every verdict that did arrive was an error, get
// a forced decision from whatever's present: missing and error never
// block promotion on their own and never mask a quarantine from the
// scanner that did report. Young records are left alone.
// Returns the number of records finalized.
func (s *Sweeper) Run() (int, []*service.ProcessingError) {
	records, err := s.Context.RedisClient.ScanRecords()
	if err != nil {
		return 0, []*service.ProcessingError{
			service.NewProcessingError("sweep", err.Error(), false),
		}
	}
	s.Context.Logger.Infof("Sweep found %d live scan records", len(records))

	finalized := 0
	allErrors := make([]*service.ProcessingError, 0)
	now := time.Now().UTC()
	threshold := s.Context.Config.StuckThreshold

	for _, record := range records {
		switch {
		case record.Complete() && !record.Inconclusive():
			s.Context.Logger.Infof("Sweeping complete-but-present record for %s", record.ObjectKey)
			_, errors := NewFinalizer(s.Context, record).Run()
			allErrors = append(allErrors, errors...)
			if len(errors) == 0 {
				finalized++
			}
		case record.IsStuck(threshold, now):
			s.Context.Logger.Warningf("Forcing decision for stuck record %s: %s, created %s",
				record.ObjectKey, record.ContributingVerdicts(),
				record.CreatedAt.Format(time.RFC3339))
			_, errors := NewForcedFinalizer(s.Context, record).Run()
			allErrors = append(allErrors, errors...)
			if len(errors) == 0 {
				finalized++
			}
		default:
			// Still within the window where a redelivered or
			// outstanding scan may legitimately resolve this record.
		}
	}
	return finalized, allErrors
}
