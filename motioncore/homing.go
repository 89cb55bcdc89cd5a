package motioncore

// overshootCount is the number of additional step pulses a homing
// axis emits after its end-stop first asserts, ensuring the carriage
// actually seats against the stop (spec.md §4.8, Glossary).
const overshootCount = 6

// retractPulses is how far each axis backs off the switch once homed,
// before the routine declares completion.
const retractPulses = 64

// homingAxis tracks the per-axis state of a single approach pass. Each
// axis approaches its minimum end-stop in the negative direction
// (DirBits bit clear), per the convention documented on DirBits.
type homingAxis struct {
	limitBit  uint8
	mask      DirBits
	overshoot int
	done      bool
}

// HomingCycle is the blocking, non-interrupt routine described in
// spec.md §4.8: one approach-then-retract pair across all enabled
// axes. It must only be called while the step interrupt is disabled.
// On completion it resets the absolute position vector to zero.
func (c *Core) HomingCycle() {
	axes := c.homingAxes()

	c.homingApproach(axes)
	c.homingRetract(axes)

	c.position = Position{}
	c.logf("homing complete")
}

// homingAxes returns the axis set to home: X and Y always, Z only
// when Enable3Axes is set.
func (c *Core) homingAxes() []homingAxis {
	axes := []homingAxis{
		{limitBit: SenseX1Limit, mask: DirX, overshoot: overshootCount},
		{limitBit: SenseY1Limit, mask: DirY, overshoot: overshootCount},
	}
	if c.cfg.Enable3Axes {
		axes = append(axes, homingAxis{limitBit: SenseZ1Limit, mask: DirZ, overshoot: overshootCount})
	}
	return axes
}

// homingApproach drives all still-active axes toward their end-stops,
// one step pulse per iteration. When an axis's end-stop asserts, its
// overshoot allowance is decremented; the axis still takes part in
// this iteration's pulse even when that decrement exhausts its
// allowance, and is masked out of only the *subsequent* iterations'
// out_bits (spec.md §4.8). The pass exits once every axis is masked
// out.
func (c *Core) homingApproach(axes []homingAxis) {
	c.hal.SetDirectionBits(0) // negative direction on every axis

	for {
		limits := c.hal.ReadLimitBits()

		out := DirBits(0)
		remaining := 0
		for i := range axes {
			a := &axes[i]
			if a.done {
				continue
			}
			out |= a.mask
			remaining++
			if limits&a.limitBit != 0 {
				a.overshoot--
				if a.overshoot <= 0 {
					a.done = true
				}
			}
		}
		if remaining == 0 {
			return
		}

		c.emitHomingPulse(out)
	}
}

// homingRetract backs every homed axis off its switch by a fixed
// pulse count in the positive direction, completing the
// approach-retract pair.
func (c *Core) homingRetract(axes []homingAxis) {
	mask := DirBits(0)
	for _, a := range axes {
		mask |= a.mask
	}
	c.hal.SetDirectionBits(mask) // positive direction: away from the switch

	for i := 0; i < retractPulses; i++ {
		c.emitHomingPulse(mask)
	}
}

func (c *Core) emitHomingPulse(out DirBits) {
	c.hal.SetStepBits(out ^ c.cfg.InvertMask)
	c.shaper.Arm()

	rate := c.cfg.HomingRate
	if rate == 0 {
		rate = 1
	}
	microsecondsPerPulse := uint32(60_000_000) / rate
	delay := uint32(0)
	if microsecondsPerPulse > c.cfg.PulseMicroseconds {
		delay = microsecondsPerPulse - c.cfg.PulseMicroseconds
	}
	c.hal.StepDelayMicroseconds(delay)
}
