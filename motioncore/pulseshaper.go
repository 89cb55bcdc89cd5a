package motioncore

// pulseShaper guarantees each step pulse has a bounded minimum
// high-time via a second one-shot timer, so the step ISR can latch the
// pulse and return promptly instead of busy-waiting. See spec.md §4.5.
type pulseShaper struct {
	hal         HAL
	pulseMicros uint32
	fcpu        uint32
}

// Arm asserts nothing itself (the caller has already driven the step
// pins); it only programs the one-shot that will reset them.
func (p *pulseShaper) Arm() {
	cycles := uint32(uint64(p.fcpu) * uint64(p.pulseMicros) / 1_000_000)
	p.hal.ArmPulseReset(cycles)
}
