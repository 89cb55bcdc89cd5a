package motioncore

// limitOrder maps a single asserted limit bit to its stop status,
// checked in a fixed, deterministic order.
var limitOrder = [...]struct {
	bit    uint8
	status StopStatus
}{
	{SenseX1Limit, StopLimitHitX1},
	{SenseX2Limit, StopLimitHitX2},
	{SenseY1Limit, StopLimitHitY1},
	{SenseY2Limit, StopLimitHitY2},
	{SenseZ1Limit, StopLimitHitZ1},
	{SenseZ2Limit, StopLimitHitZ2},
}

// StepTick is the step-event interrupt service routine described in
// spec.md §4.7. It is invoked by the HAL's step timer (or, in tests,
// called directly in place of a hardware interrupt). It is reentrancy
// guarded: a nested invocation observing busy returns immediately
// without mutating any state, matching spec.md's concurrency model.
func (c *Core) StepTick() {
	if !c.sup.TryEnter() {
		return
	}
	defer c.sup.Leave()

	if c.sup.StopRequested() {
		c.hal.DisableStepInterrupt()
		c.sup.setProcessing(false)
		c.planner.ResetBlockBuffer()
		c.currentBlock = nil
		return
	}

	if c.cfg.EnableLaserInterlocks {
		limits := c.hal.ReadLimitBits()
		if limits&(SenseDoorOpen|SenseChillerOff) != 0 {
			// Door-open or chiller-off only cuts the laser; it does
			// not request a stop.
			c.beam.CutToZero()
		}
		for _, l := range limitOrder {
			if limits&l.bit != 0 {
				// A safety stop reacts within this same invocation
				// rather than waiting for the next tick's
				// stop_requested check, so the controller cannot
				// emit another pulse after a limit switch trips.
				c.sup.RequestStop(l.status)
				c.hal.DisableStepInterrupt()
				c.sup.setProcessing(false)
				c.planner.ResetBlockBuffer()
				c.currentBlock = nil
				return
			}
		}
	}

	c.beam.StepPulse(c.profile.cyclesPerStepEvent)

	if c.currentBlock == nil {
		block, ok := c.planner.GetCurrentBlock()
		if !ok {
			c.hal.DisableStepInterrupt()
			c.sup.setProcessing(false)
			return
		}
		c.enterBlock(block)
	}

	c.dispatch(c.currentBlock)
}

// enterBlock performs the one-time setup for a freshly popped block
// (spec.md §4.7 step 7).
func (c *Core) enterBlock(block *Block) {
	c.currentBlock = block
	c.stepEventsCompleted = 0

	if block.Type.IsMotion() {
		c.profile.Start(block)
		c.bres.Seed(block.StepEventCount)
		c.beam.BlockStart(block)
	}

	c.logf("enter block type=%s events=%d", block.Type, block.StepEventCount)
}

// dispatch runs one step event of the current block, per spec.md §4.7
// step 8.
func (c *Core) dispatch(block *Block) {
	if !block.Type.IsMotion() {
		c.dispatchCommand(block)
		return
	}

	c.hal.SetDirectionBits(block.Direction)
	stepBits := c.bres.Step(block, &c.position)
	c.hal.SetStepBits(stepBits ^ c.cfg.InvertMask)
	c.shaper.Arm()

	c.stepEventsCompleted++

	inCruise := c.stepEventsCompleted > block.AccelerateUntil && c.stepEventsCompleted <= block.DecelerateAfter
	if block.Type == BlockRasterLine {
		c.beam.RasterTick(block, inCruise)
	}

	rateChanged := c.profile.Advance(block, c.stepEventsCompleted)
	if rateChanged && block.Type != BlockRasterLine {
		c.beam.applyDimming(block, c.profile.adjustedRate)
	}

	if c.stepEventsCompleted == block.StepEventCount {
		c.completeBlock(block)
	}
}

// dispatchCommand runs an assist-toggle block to completion: a single
// GPIO write, then the block is discarded (spec.md §4.7 step 8).
func (c *Core) dispatchCommand(block *Block) {
	switch block.Type {
	case BlockAirAssistEnable:
		c.hal.ControlAirAssist(true)
	case BlockAirAssistDisable:
		c.hal.ControlAirAssist(false)
	case BlockAux1Enable:
		c.hal.ControlAux1(true)
	case BlockAux1Disable:
		c.hal.ControlAux1(false)
	case BlockAux2Enable:
		c.hal.ControlAux2(true)
	case BlockAux2Disable:
		c.hal.ControlAux2(false)
	}
	c.discardBlock(block)
}

func (c *Core) completeBlock(block *Block) {
	c.beam.BlockEnd(block)
	c.discardBlock(block)
}

func (c *Core) discardBlock(block *Block) {
	c.planner.DiscardCurrentBlock()
	c.currentBlock = nil
}
