package motioncore

import "github.com/orsinium-labs/tinymath"

// Q16 is a Q16.16 fixed-point fraction in [0, 1<<16], used in place of
// the source firmware's floating-point "adjust_beam_dynamics" so the beam
// modulator's hot path never touches the FPU. One unit is 1/65536.
type Q16 uint32

const q16One = Q16(1 << 16)

// fromFloatRatio converts a float32 ratio known to lie in [0,1] into
// Q16.16, rounding to nearest. Only used once, when the beam modulator
// is constructed (not per block or per step), via tinymath to match the teacher's
// (tmc5160/helpers.go) practice of using tinymath instead of the math
// package on tinygo targets.
func fromFloatRatio(r float32) Q16 {
	return Q16(tinymath.Round(r * float32(q16One)))
}

// mulQ16 multiplies a uint32 value by a Q16.16 fraction, rounding down.
func mulQ16(value uint32, frac Q16) uint32 {
	return uint32((uint64(value) * uint64(frac)) >> 16)
}
