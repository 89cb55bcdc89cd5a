package motioncore

// fullOnDutyThreshold is the duty value at and above which the laser
// pulse one-shot is skipped and the pin is simply held high. The
// exact threshold is carried over from the source firmware unexamined
// (spec.md §9 Open Questions) rather than re-derived.
const fullOnDutyThreshold = 242

// beamModulator emits laser pulses synchronized to step events and
// applies speed-proportional dimming plus raster-pixel sampling. See
// spec.md §4.6.
type beamModulator struct {
	hal HAL

	every      uint32 // CONFIG_BEAMDYNAMICS_EVERY
	startQ16   Q16    // CONFIG_BEAMDYNAMICS_START, pre-converted once at construction

	pwmCounter uint32 // pwm_counter, counts 1..every
	duty       uint8  // last intensity pushed to the HAL

	// raster state
	pixelCounter uint32
	raster       RasterSource
}

func newBeamModulator(hal HAL, every uint32, start float32, raster RasterSource) beamModulator {
	return beamModulator{
		hal:      hal,
		every:    every,
		startQ16: fromFloatRatio(start),
		raster:   raster,
	}
}

// BlockStart resets the per-block pulse and pixel counters and sets
// the initial beam intensity: dimmed from the nominal intensity for a
// regular line, or held at zero for a raster line (spec.md §4.7 step 7).
func (m *beamModulator) BlockStart(block *Block) {
	m.pwmCounter = 0
	m.pixelCounter = 0
	if block.Type == BlockRasterLine {
		m.setDuty(0)
		return
	}
	m.applyDimming(block, block.InitialRate)
}

// StepPulse is called once per step event for the per-step laser
// pulse concern, using the most recently set duty.
// cyclesPerStepEvent is the current step-event period.
func (m *beamModulator) StepPulse(cyclesPerStepEvent uint32) {
	m.pwmCounter++
	if m.pwmCounter < m.every {
		return
	}
	m.pwmCounter = 1
	m.emitPulse(m.duty, cyclesPerStepEvent)
}

// setDuty records and pushes a new base intensity.
func (m *beamModulator) setDuty(duty uint8) {
	m.duty = duty
	m.hal.SetLaserPWM(duty)
}

// CutToZero forces the intensity to 0 without disturbing pwmCounter,
// used by the interlock check (spec.md §4.7 step 4).
func (m *beamModulator) CutToZero() {
	m.setDuty(0)
}

func (m *beamModulator) emitPulse(duty uint8, cyclesPerStepEvent uint32) {
	switch {
	case duty == 0:
		m.hal.SetLaserOff()
	case duty >= fullOnDutyThreshold:
		m.hal.SetLaserOn()
	default:
		// width = every * duty * cyclesPerStepEvent / 256
		width := uint64(m.every) * uint64(duty) * uint64(cyclesPerStepEvent) / 256
		prescaler, ceiling, _ := configureTimer(uint32(width))
		m.hal.SetLaserOn()
		m.hal.ArmBeamPulseReset(prescaler, ceiling)
	}
}

// applyDimming implements the speed-proportional dimming formula from
// spec.md §4.6 and pushes the result to the HAL.
func (m *beamModulator) applyDimming(block *Block, stepsPerMinute uint32) {
	m.setDuty(m.dim(block, stepsPerMinute))
}

func (m *beamModulator) dim(block *Block, stepsPerMinute uint32) uint8 {
	I := uint32(block.NominalLaserIntensity)
	R := block.NominalRate
	if R == 0 {
		return uint8(I)
	}

	// dimm = start + (1-start) * I/255
	iRatio := Q16((I << 16) / 255)
	dimm := m.startQ16 + mulQ16(uint32(q16One-m.startQ16), iRatio)

	// speedRatio = stepsPerMinute / R, clamped to [0,1]
	speedRatioQ16 := uint64(stepsPerMinute) << 16 / uint64(R)
	if speedRatioQ16 > uint64(q16One) {
		speedRatioQ16 = uint64(q16One)
	}

	// adjusted = I * ((1-dimm) + dimm*speedRatio)
	term := uint32(q16One-dimm) + mulQ16(uint32(speedRatioQ16), dimm)
	adjusted := mulQ16(I, Q16(term))
	return uint8(constrain(adjusted, 0, 255))
}

// RasterTick is called once per step event during a raster block's
// cruise phase (accelerate_until <= step_events_completed <
// decelerate_after). Every PixelSteps step events it consumes one
// raster byte and maps it to an intensity.
func (m *beamModulator) RasterTick(block *Block, inCruise bool) {
	if !inCruise {
		return
	}
	m.pixelCounter++
	if m.pixelCounter < block.PixelSteps {
		return
	}
	m.pixelCounter = 0

	m.hal.EnterCritical()
	b, ok := m.raster.ReadRasterByte()
	m.hal.ExitCritical()
	if !ok {
		return
	}

	m.setDuty(rasterByteToIntensity(b, block.NominalLaserIntensity))
}

// rasterByteToIntensity maps a raster byte in [128,255] linearly onto
// [0, I]: (byte-128) * 2 * I / 255. Bytes below 128 map to 0.
func rasterByteToIntensity(b byte, I uint8) uint8 {
	if b < 128 {
		return 0
	}
	v := uint32(b-128) * 2 * uint32(I) / 255
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// BlockEnd instructs the raster source to drop any trailing bytes
// belonging to the block that just completed.
func (m *beamModulator) BlockEnd(block *Block) {
	if block.Type == BlockRasterLine {
		m.raster.ConsumeRemaining()
	}
}
