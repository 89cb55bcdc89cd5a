// Package simhal is a software HAL used to drive and test
// motioncore.Core without any tinygo/machine dependency, in the same
// spirit as sharpmem_test.go's mockBus: every pin write and timer
// program is recorded instead of touching real hardware.
package simhal

import "github.com/laserctl/motioncore"

// PinState is a snapshot of the simulated output pins at a point in time.
type PinState struct {
	Direction motioncore.DirBits
	Step      motioncore.DirBits
	LaserOn   bool
	LaserPWM  uint8
	AirAssist bool
	Aux1      bool
	Aux2      bool
}

// TimerProgram records the last (prescaler, ceiling) pair pushed to a
// simulated timer.
type TimerProgram struct {
	Prescaler uint32
	Ceiling   uint16
	Armed     bool
}

// HAL is a fully in-memory motioncore.HAL implementation. It is not
// safe for concurrent use: EnterCritical/ExitCritical only track the
// nesting depth in CriticalDepth, matching the single-consumer
// assumption of the real target.
type HAL struct {
	Pins PinState

	StepTimer TimerProgram
	PulseOneShot TimerProgram
	BeamOneShot  TimerProgram

	Limits uint8

	CriticalDepth int

	StepInterruptEnabled bool

	// Delays records every StepDelayMicroseconds call, for assertions
	// in homing tests without an actual sleep.
	Delays []uint32
}

func New() *HAL {
	return &HAL{}
}

func (h *HAL) SetDirectionBits(bits motioncore.DirBits) { h.Pins.Direction = bits }

func (h *HAL) SetStepBits(bits motioncore.DirBits) { h.Pins.Step = bits }

func (h *HAL) ResetStepBits() { h.Pins.Step = 0 }

func (h *HAL) ProgramStepTimer(prescaler uint32, ceiling uint16) {
	h.StepTimer = TimerProgram{Prescaler: prescaler, Ceiling: ceiling, Armed: true}
}

func (h *HAL) ArmPulseReset(cycles uint32) {
	prescaler, ceiling := cyclesToPrescalerCeiling(cycles)
	h.PulseOneShot = TimerProgram{Prescaler: prescaler, Ceiling: ceiling, Armed: true}
}

func (h *HAL) ArmBeamPulseReset(prescaler uint32, ceiling uint16) {
	h.BeamOneShot = TimerProgram{Prescaler: prescaler, Ceiling: ceiling, Armed: true}
}

func (h *HAL) SetLaserPWM(duty uint8) {
	h.Pins.LaserPWM = duty
	h.Pins.LaserOn = duty > 0
}

func (h *HAL) SetLaserOn()  { h.Pins.LaserOn = true }
func (h *HAL) SetLaserOff() { h.Pins.LaserOn = false; h.Pins.LaserPWM = 0 }

func (h *HAL) ReadLimitBits() uint8 { return h.Limits }

func (h *HAL) ControlAirAssist(on bool) { h.Pins.AirAssist = on }
func (h *HAL) ControlAux1(on bool)      { h.Pins.Aux1 = on }
func (h *HAL) ControlAux2(on bool)      { h.Pins.Aux2 = on }

func (h *HAL) EnableStepInterrupt()  { h.StepInterruptEnabled = true }
func (h *HAL) DisableStepInterrupt() { h.StepInterruptEnabled = false }

func (h *HAL) EnterCritical() { h.CriticalDepth++ }
func (h *HAL) ExitCritical()  { h.CriticalDepth-- }

func (h *HAL) StepDelayMicroseconds(us uint32) { h.Delays = append(h.Delays, us) }

// FirePulseReset simulates the Pulse Shaper's one-shot firing: it
// restores step pins to idle and disables the one-shot.
func (h *HAL) FirePulseReset() {
	if !h.PulseOneShot.Armed {
		return
	}
	h.Pins.Step = 0
	h.PulseOneShot.Armed = false
}

// FireBeamPulseReset simulates the beam pulse one-shot firing: it
// drops the laser pin and disables itself.
func (h *HAL) FireBeamPulseReset() {
	if !h.BeamOneShot.Armed {
		return
	}
	h.Pins.LaserOn = false
	h.BeamOneShot.Armed = false
}

// cyclesToPrescalerCeiling mirrors the Timer Controller's prescaler
// selection for the pulse-shaper one-shot, which is programmed
// directly in cycles by motioncore.
func cyclesToPrescalerCeiling(cycles uint32) (uint32, uint16) {
	tiers := []struct {
		prescaler uint32
		shift     uint8
	}{
		{1, 0}, {8, 3}, {64, 6}, {256, 8}, {1024, 10},
	}
	for _, t := range tiers {
		shifted := cycles >> t.shift
		if shifted <= 0xFFFF {
			return t.prescaler, uint16(shifted)
		}
	}
	return 1024, 0xFFFF
}
