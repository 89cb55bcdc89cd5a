package motioncore

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/laserctl/motioncore/internal/simhal"
)

func newTestCore(cfg Config) (*Core, *simhal.HAL, *simhal.Planner) {
	if cfg.FCPU == 0 {
		cfg.FCPU = 16_000_000
	}
	if cfg.MinimumStepsPerMinute == 0 {
		cfg.MinimumStepsPerMinute = 1
	}
	if cfg.StepsPerMM == ([3]float64{}) {
		cfg.StepsPerMM = [3]float64{80, 80, 80}
	}
	if cfg.BeamDynamicsEvery == 0 {
		cfg.BeamDynamicsEvery = 1
	}
	hal := simhal.New()
	planner := simhal.NewPlanner()
	raster := simhal.NewRasterRing(64)
	core := New(cfg, hal, planner, raster)
	core.Init()
	return core, hal, planner
}

func TestCore_PureXLineCompletesAndAdvancesPosition(t *testing.T) {
	c := qt.New(t)

	core, _, planner := newTestCore(Config{})
	planner.Enqueue(&Block{
		Type: BlockLine, StepsX: 10, StepEventCount: 10, Direction: DirX,
		InitialRate: 6000, NominalRate: 6000, FinalRate: 6000,
		AccelerateUntil: 0, DecelerateAfter: 10,
	})

	for i := 0; i < 10; i++ {
		core.StepTick()
	}

	c.Assert(planner.Len(), qt.Equals, 0)
	c.Assert(core.GetPositionX(), qt.Equals, 10.0/80.0)
}

func TestCore_SingleStepBlockCompletesOnFirstEvent(t *testing.T) {
	c := qt.New(t)

	core, _, planner := newTestCore(Config{})
	planner.Enqueue(&Block{
		Type: BlockLine, StepsX: 1, StepEventCount: 1, Direction: DirX,
		InitialRate: 6000, NominalRate: 6000, FinalRate: 6000,
		AccelerateUntil: 0, DecelerateAfter: 1,
	})

	core.StepTick()

	c.Assert(planner.Len(), qt.Equals, 0)
}

func TestCore_AssistToggleBlockIsOneShot(t *testing.T) {
	c := qt.New(t)

	core, hal, planner := newTestCore(Config{})
	planner.Enqueue(&Block{Type: BlockAirAssistEnable})

	core.StepTick()

	c.Assert(hal.Pins.AirAssist, qt.IsTrue)
	c.Assert(planner.Len(), qt.Equals, 0)
}

func TestCore_LimitTriggeredStop(t *testing.T) {
	c := qt.New(t)

	core, hal, planner := newTestCore(Config{EnableLaserInterlocks: true})
	planner.Enqueue(&Block{
		Type: BlockLine, StepsX: 100, StepEventCount: 100, Direction: DirX,
		InitialRate: 6000, NominalRate: 6000, FinalRate: 6000,
		AccelerateUntil: 0, DecelerateAfter: 100,
	})
	core.StartProcessing()

	core.StepTick()
	hal.Limits = SenseX1Limit

	core.StepTick()

	c.Assert(core.StopStatus(), qt.Equals, StopLimitHitX1)
	c.Assert(core.Processing(), qt.IsFalse)
}

func TestCore_ReentrancyDropsNestedTick(t *testing.T) {
	c := qt.New(t)

	core, _, planner := newTestCore(Config{})
	planner.Enqueue(&Block{
		Type: BlockLine, StepsX: 10, StepEventCount: 10, Direction: DirX,
		InitialRate: 6000, NominalRate: 6000, FinalRate: 6000,
		AccelerateUntil: 0, DecelerateAfter: 10,
	})

	c.Assert(core.sup.TryEnter(), qt.IsTrue)
	core.StepTick() // observes busy==true, must return without mutating state
	core.sup.Leave()

	c.Assert(core.stepEventsCompleted, qt.Equals, uint32(0))
	c.Assert(planner.Len(), qt.Equals, 1)
}

func TestCore_StopRequestIsIdempotentAndResumable(t *testing.T) {
	c := qt.New(t)

	core, _, _ := newTestCore(Config{})
	core.RequestStop(StopLimitHitY1)
	core.RequestStop(StopOK)
	c.Assert(core.StopStatus(), qt.Equals, StopLimitHitY1)

	before := core.GetPositionX()
	core.StopResume()
	c.Assert(core.StopRequested(), qt.IsFalse)
	c.Assert(core.GetPositionX(), qt.Equals, before)
}

func TestCore_SetPositionRoundTrip(t *testing.T) {
	c := qt.New(t)

	core, _, _ := newTestCore(Config{})
	core.SetPosition(12.5, -3.0, 0.0)

	c.Assert(core.GetPositionX(), qt.Equals, 12.5)
	c.Assert(core.GetPositionY(), qt.Equals, -3.0)
	c.Assert(core.GetPositionZ(), qt.Equals, 0.0)
}
