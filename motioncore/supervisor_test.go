package motioncore

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

type fakeStopRaster struct{ stopped int }

func (f *fakeStopRaster) ReadRasterByte() (byte, bool) { return 0, false }
func (f *fakeStopRaster) ConsumeRemaining()            {}
func (f *fakeStopRaster) Stop()                        { f.stopped++ }

func TestSupervisor_RequestStopIsIdempotent(t *testing.T) {
	c := qt.New(t)

	raster := &fakeStopRaster{}
	var s supervisor
	s.raster = raster

	s.RequestStop(StopLimitHitX1)
	s.RequestStop(StopLimitHitY2)

	c.Assert(s.StopStatus(), qt.Equals, StopLimitHitX1)
	c.Assert(raster.stopped, qt.Equals, 1)
}

func TestSupervisor_ResumeClearsState(t *testing.T) {
	c := qt.New(t)

	var s supervisor
	s.raster = &fakeStopRaster{}
	s.RequestStop(StopLimitHitZ1)
	s.Resume()

	c.Assert(s.StopRequested(), qt.IsFalse)
	c.Assert(s.StopStatus(), qt.Equals, StopOK)
}

func TestSupervisor_ReentrancyGuard(t *testing.T) {
	c := qt.New(t)

	var s supervisor
	c.Assert(s.TryEnter(), qt.IsTrue)
	c.Assert(s.TryEnter(), qt.IsFalse)
	s.Leave()
	c.Assert(s.TryEnter(), qt.IsTrue)
}
