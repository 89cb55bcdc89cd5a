package motioncore

// accelTickGenerator derives a logical ~100 Hz acceleration clock from
// step-event timing, without a dedicated hardware timer. See
// spec.md §4.2.
type accelTickGenerator struct {
	cyclesPerTick uint32 // CYCLES_PER_ACCELERATION_TICK
	counter       uint32 // acc_counter
}

func newAccelTickGenerator(fcpu uint32, ticksPerSecond uint32) accelTickGenerator {
	if ticksPerSecond == 0 {
		ticksPerSecond = 100
	}
	return accelTickGenerator{cyclesPerTick: fcpu / ticksPerSecond}
}

// ResetMidpoint initializes the counter to half its period, per the
// midpoint rule: called at the start of acceleration and again at the
// start of deceleration so the average tick phase is centered.
func (a *accelTickGenerator) ResetMidpoint() {
	a.counter = a.cyclesPerTick / 2
}

// Tick advances the counter by one step event's worth of cycles and
// reports whether a new acceleration decision is due.
func (a *accelTickGenerator) Tick(cyclesPerStepEvent uint32) bool {
	a.counter += cyclesPerStepEvent
	if a.counter > a.cyclesPerTick {
		a.counter -= a.cyclesPerTick
		return true
	}
	return false
}
