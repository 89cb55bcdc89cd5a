package motioncore

// speedProfile integrates the trapezoidal velocity profile across a
// block's step events, reprogramming the step timer on every rate
// change. See spec.md §4.3.
type speedProfile struct {
	tick              accelTickGenerator
	timer             timerController
	fcpu              uint32
	minStepsPerMinute uint32

	adjustedRate       uint32
	cyclesPerStepEvent uint32
}

// Start seeds the profile for a freshly entered motion block: the
// initial rate, the step timer, and the midpoint-seeded acceleration
// counter. It always counts as a rate change, since this is the
// block's first timer programming.
func (p *speedProfile) Start(block *Block) {
	p.adjustedRate = block.InitialRate
	p.tick.ResetMidpoint()
	p.reprogram()
}

// Advance runs one step event's worth of the profile: it decides
// whether the current step_events_completed places the block in
// Phase A/B/C-boundary/D, applies the corresponding rate change when
// an acceleration tick is due, and reprograms the timer on any change.
// It reports whether the rate changed, so the caller can refresh beam
// dimming only when needed.
//
// stepEventsCompleted is the count AFTER the step just emitted (i.e.
// the value used to decide the phase for the *next* step event, per
// spec.md's exhaustive non-overlapping phase test).
func (p *speedProfile) Advance(block *Block, stepEventsCompleted uint32) (rateChanged bool) {
	switch {
	case stepEventsCompleted < block.AccelerateUntil:
		// Phase A: accelerate.
		if p.tick.Tick(p.cyclesPerStepEvent) {
			r := saturatingAdd(p.adjustedRate, block.RateDelta, block.NominalRate)
			if r != p.adjustedRate {
				p.adjustedRate = r
				p.reprogram()
				return true
			}
		}

	case stepEventsCompleted < block.DecelerateAfter:
		// Phase B: cruise.
		if p.adjustedRate != block.NominalRate {
			p.adjustedRate = block.NominalRate
			p.reprogram()
			return true
		}

	case stepEventsCompleted == block.DecelerateAfter:
		// Phase C boundary: reseed the acceleration counter so
		// deceleration starts at the midpoint too.
		p.tick.ResetMidpoint()

	default:
		// Phase D: decelerate.
		if p.tick.Tick(p.cyclesPerStepEvent) {
			r := saturatingSub(p.adjustedRate, block.RateDelta, block.FinalRate, p.minStepsPerMinute)
			if r != p.adjustedRate {
				p.adjustedRate = r
				p.reprogram()
				return true
			}
		}
	}
	return false
}

func (p *speedProfile) reprogram() {
	if p.adjustedRate < p.minStepsPerMinute {
		p.adjustedRate = p.minStepsPerMinute
	}
	p.cyclesPerStepEvent = cyclesPerStepEvent(p.fcpu, p.adjustedRate)
	p.timer.Configure(p.cyclesPerStepEvent)
}

// saturatingAdd adds delta to rate and clamps up to ceiling.
func saturatingAdd(rate, delta, ceiling uint32) uint32 {
	r := rate + delta
	if r > ceiling || r < rate /* overflow */ {
		return ceiling
	}
	return r
}

// saturatingSub subtracts delta from rate, never going below zero,
// then clamps up to floor (final_rate may exceed a saturated
// subtraction result).
func saturatingSub(rate, delta, floor, absoluteMin uint32) uint32 {
	var r uint32
	if delta >= rate {
		r = 0
	} else {
		r = rate - delta
	}
	if r < floor {
		r = floor
	}
	if r < absoluteMin {
		r = absoluteMin
	}
	return r
}
