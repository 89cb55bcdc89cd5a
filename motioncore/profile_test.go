package motioncore

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func newTestProfile(fcpu uint32, minRate uint32) speedProfile {
	h := &fakeTimerHAL{}
	return speedProfile{
		tick:              newAccelTickGenerator(fcpu, 100),
		timer:             timerController{hal: h},
		fcpu:              fcpu,
		minStepsPerMinute: minRate,
	}
}

// fakeTimerHAL satisfies just enough of HAL for timerController in
// isolation from the rest of the simulator.
type fakeTimerHAL struct{ HAL }

func (f *fakeTimerHAL) ProgramStepTimer(prescaler uint32, ceiling uint16) {}

func TestSpeedProfile_Trapezoid(t *testing.T) {
	c := qt.New(t)

	block := &Block{
		StepEventCount:  1000,
		InitialRate:     6000,
		NominalRate:     60000,
		FinalRate:       6000,
		RateDelta:       600,
		AccelerateUntil: 900,
		DecelerateAfter: 900,
	}

	p := newTestProfile(16_000_000, 1)
	p.Start(block)
	c.Assert(p.adjustedRate, qt.Equals, block.InitialRate)

	maxSeen := p.adjustedRate
	for events := uint32(1); events <= block.StepEventCount; events++ {
		p.Advance(block, events)
		c.Assert(p.adjustedRate <= block.NominalRate, qt.IsTrue)
		if p.adjustedRate > maxSeen {
			maxSeen = p.adjustedRate
		}
	}

	c.Assert(maxSeen <= block.NominalRate, qt.IsTrue)
	c.Assert(p.adjustedRate, qt.Equals, block.FinalRate)
}

func TestSpeedProfile_NoRampWhenRatesEqual(t *testing.T) {
	c := qt.New(t)

	block := &Block{
		StepEventCount:  10,
		InitialRate:     60000,
		NominalRate:     60000,
		FinalRate:       60000,
		RateDelta:       0,
		AccelerateUntil: 0,
		DecelerateAfter: 10,
	}

	p := newTestProfile(16_000_000, 1)
	p.Start(block)
	for events := uint32(1); events <= block.StepEventCount; events++ {
		p.Advance(block, events)
		c.Assert(p.adjustedRate, qt.Equals, uint32(60000))
	}
}

func TestSpeedProfile_AccelerateUntilZeroSkipsPhaseA(t *testing.T) {
	c := qt.New(t)

	block := &Block{
		StepEventCount:  10,
		InitialRate:     60000,
		NominalRate:     60000,
		FinalRate:       6000,
		RateDelta:       1000,
		AccelerateUntil: 0,
		DecelerateAfter: 10,
	}

	p := newTestProfile(16_000_000, 1)
	p.Start(block)
	// Event 1 is already >= AccelerateUntil(0), so we should land
	// straight in cruise (no Phase A acceleration applied).
	p.Advance(block, 1)
	c.Assert(p.adjustedRate, qt.Equals, uint32(60000))
}

func TestSpeedProfile_DecelerateAfterEqualsCountSkipsPhaseD(t *testing.T) {
	c := qt.New(t)

	block := &Block{
		StepEventCount:  10,
		InitialRate:     6000,
		NominalRate:     60000,
		FinalRate:       6000,
		RateDelta:       60000,
		AccelerateUntil: 0,
		DecelerateAfter: 10,
	}

	p := newTestProfile(16_000_000, 1)
	p.Start(block)
	for events := uint32(1); events <= block.StepEventCount; events++ {
		p.Advance(block, events)
	}
	// DecelerateAfter == StepEventCount means the boundary branch fires
	// exactly at the last event and Phase D never runs.
	c.Assert(p.adjustedRate, qt.Equals, uint32(60000))
}
