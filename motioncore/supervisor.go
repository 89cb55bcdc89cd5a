package motioncore

import "sync/atomic"

// supervisor tracks the processing/stop/busy state shared between the
// step ISR and the foreground. See spec.md §3 and §4.9.
//
// processing and busy are accessed from both the (simulated) ISR and
// the foreground, so they use atomics rather than a plain bool —
// mirroring the spec's requirement that busy use an atomic
// read-modify-write or the hardware's single-instruction test-and-set.
type supervisor struct {
	processing    atomic.Bool
	busy          atomic.Bool
	stopRequested atomic.Bool
	stopStatus    atomic.Uint32 // holds a StopStatus
	raster        RasterSource
}

// RequestStop is idempotent: only the first call after a resume
// records its kind.
func (s *supervisor) RequestStop(kind StopStatus) {
	if s.stopRequested.CompareAndSwap(false, true) {
		s.stopStatus.Store(uint32(kind))
		if s.raster != nil {
			s.raster.Stop()
		}
	}
}

// Resume clears the stop flag and resets the status to OK.
func (s *supervisor) Resume() {
	s.stopRequested.Store(false)
	s.stopStatus.Store(uint32(StopOK))
}

func (s *supervisor) StopStatus() StopStatus {
	return StopStatus(s.stopStatus.Load())
}

func (s *supervisor) StopRequested() bool {
	return s.stopRequested.Load()
}

// TryEnter attempts to claim the busy flag for the duration of a step
// ISR invocation. It returns false if a previous invocation is still
// running, in which case the caller must drop the tick immediately
// without mutating any state.
func (s *supervisor) TryEnter() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *supervisor) Leave() {
	s.busy.Store(false)
}

func (s *supervisor) Processing() bool {
	return s.processing.Load()
}

func (s *supervisor) setProcessing(v bool) {
	s.processing.Store(v)
}
