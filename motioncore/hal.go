package motioncore

// Prescaler/shift pair for the step and one-shot timers. Index order
// matches the tiers in the spec: (1,0) (8,3) (64,6) (256,8) (1024,10).
type prescalerTier struct {
	prescaler uint32
	shift     uint8
}

var prescalerTiers = [...]prescalerTier{
	{1, 0},
	{8, 3},
	{64, 6},
	{256, 8},
	{1024, 10},
}

// Limit/sense bit positions within HAL.ReadLimitBits.
const (
	SenseDoorOpen uint8 = 1 << iota
	SenseChillerOff
	SenseX1Limit
	SenseX2Limit
	SenseY1Limit
	SenseY2Limit
	SenseZ1Limit
	SenseZ2Limit
)

// HAL is the minimal hardware-abstraction surface the motion core
// drives. A real target implements it against on-chip timers and GPIO
// (under a tinygo build tag); tests and the mock planner implement it
// against a software simulator.
type HAL interface {
	// SetDirectionBits drives the per-axis direction outputs.
	SetDirectionBits(bits DirBits)

	// SetStepBits asserts the per-axis step outputs named in bits.
	SetStepBits(bits DirBits)

	// ResetStepBits returns the step outputs to their idle state.
	ResetStepBits()

	// ProgramStepTimer configures the step-event interrupt period.
	// It reprograms the hardware timer with the given (prescaler,
	// ceiling) and must fire StepTick once the period elapses.
	ProgramStepTimer(prescaler uint32, ceiling uint16)

	// ArmPulseReset schedules a one-shot callback after the given
	// number of CPU cycles that restores the step pins to idle.
	ArmPulseReset(cycles uint32)

	// ArmBeamPulseReset schedules a one-shot callback, programmed with
	// the given (prescaler, ceiling) pair, that drops the laser pin.
	ArmBeamPulseReset(prescaler uint32, ceiling uint16)

	// SetLaserPWM sets the laser intensity, 0..255. Duty 0 holds the
	// pin low. For the per-step pulse, the beam modulator calls
	// SetLaserOn/Off directly in the fully-off (duty 0) and fully-on
	// (duty >= 242) cases instead of going through SetLaserPWM.
	SetLaserPWM(duty uint8)

	// SetLaserOn/Off bypass PWM for the pulsed-one-shot and full-on
	// laser states.
	SetLaserOn()
	SetLaserOff()

	// ReadLimitBits returns the sense-signal bundle (door, chiller,
	// six limit switches) as a bitmask using the Sense* constants.
	ReadLimitBits() uint8

	// ControlAirAssist, ControlAux1, ControlAux2 drive the named
	// digital assist outputs.
	ControlAirAssist(on bool)
	ControlAux1(on bool)
	ControlAux2(on bool)

	// EnableStepInterrupt/DisableStepInterrupt arm or disarm the step
	// timer's interrupt without losing its programmed period.
	EnableStepInterrupt()
	DisableStepInterrupt()

	// EnterCritical/ExitCritical bracket a read of state shared with
	// another interrupt level (the raster ring buffer, or a
	// diagnostics snapshot). Implementations typically disable and
	// restore global interrupts; on a simulator they can be a no-op
	// mutex.
	EnterCritical()
	ExitCritical()

	// StepDelayMicroseconds busy-waits for the given duration; used
	// only by the blocking Homing Controller.
	StepDelayMicroseconds(us uint32)
}

// RasterSource is the out-of-scope serial transport collaborator that
// feeds raster pixel bytes one at a time.
type RasterSource interface {
	// ReadRasterByte consumes one raster byte. It is only called
	// during a raster block's cruise phase, under HAL.EnterCritical.
	ReadRasterByte() (byte, bool)

	// ConsumeRemaining drains any trailing raster bytes belonging to
	// the block that just completed.
	ConsumeRemaining()

	// Stop instructs the transport to stop accepting further data.
	Stop()
}

// configureTimer implements the Timer Controller contract: given a
// requested step-event period in CPU cycles, select the smallest
// prescaler such that the ceiling fits in 16 bits, and return the
// achieved period. If even the slowest prescaler overflows, clamp to
// the maximum representable period.
func configureTimer(cycles uint32) (prescaler uint32, ceiling uint16, actual uint32) {
	for _, tier := range prescalerTiers {
		shifted := cycles >> tier.shift
		if shifted <= 0xFFFF {
			return tier.prescaler, uint16(shifted), shifted * tier.prescaler
		}
	}
	last := prescalerTiers[len(prescalerTiers)-1]
	return last.prescaler, 0xFFFF, 0xFFFF * last.prescaler
}
