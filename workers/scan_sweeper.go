package workers

import (
	"time"

	"github.com/mediasafe/media-scan-services/models/common"
	"github.com/mediasafe/media-scan-services/scan"
)

// ScanSweeper periodically resolves scan records that are stuck or
// were left behind by a crashed finalizer. It keeps no state between
// sweeps.
type ScanSweeper struct {
	Context *common.Context
}

func NewScanSweeper() *ScanSweeper {
	return &ScanSweeper{
		Context: common.NewContext(),
	}
}

func (s *ScanSweeper) RunOnce() {
	s.logStartup()
	s.sweep()
}

func (s *ScanSweeper) RunAsService() {
	s.logStartup()
	for {
		s.sweep()
		s.Context.Logger.Infof("Finished. Will sweep again in %s",
			s.Context.Config.SweepInterval.String())
		time.Sleep(s.Context.Config.SweepInterval)
	}
}

func (s *ScanSweeper) logStartup() {
	s.Context.Logger.Info("Starting with config settings:")
	s.Context.Logger.Info(s.Context.Config.ToJSON())
	s.Context.Logger.Infof("Sweep interval: %s, stuck threshold: %s",
		s.Context.Config.SweepInterval.String(),
		s.Context.Config.StuckThreshold.String())
}

func (s *ScanSweeper) sweep() {
	finalized, errors := scan.NewSweeper(s.Context).Run()
	for _, err := range errors {
		s.Context.Logger.Error(err.Error())
	}
	s.Context.Logger.Infof("Sweep finalized %d records", finalized)
}
