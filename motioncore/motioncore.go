// Package motioncore implements the real-time step-pulse generation
// and motion-execution core of a laser-cutter motion controller: a
// trapezoidal speed-profile executor with Bresenham multi-axis integer
// step distribution, dynamic step-timer reconfiguration, and
// beam-intensity modulation coupled to instantaneous velocity and
// raster-pixel position.
//
// The planner that fills the block queue, the serial transport and its
// raster byte stream, the high-level protocol loop, digital I/O for
// assist outputs, end-stop sensor polling, and configuration parsing
// are all treated as external collaborators (see Planner, RasterSource
// and HAL) and are not implemented here.
package motioncore

import "errors"

// ErrNotProcessing is returned by operations that require the step
// interrupt to be armed.
var ErrNotProcessing = errors.New("motioncore: not processing")

// ErrAlreadyProcessing is returned by StartProcessing when already armed.
var ErrAlreadyProcessing = errors.New("motioncore: already processing")

// Config carries every compile-time constant named in spec.md §6 as
// struct fields, in the idiom of comboat.Config, rather than build
// tags or preprocessor macros.
type Config struct {
	FCPU uint32 // CPU clock, Hz

	AccelerationTicksPerSecond uint32 // nominal 100
	MinimumStepsPerMinute      uint32
	PulseMicroseconds          uint32

	StepsPerMM     [3]float64 // X, Y, Z
	OriginOffsetMM [3]float64 // X, Y, Z

	BeamDynamicsEvery uint32  // CONFIG_BEAMDYNAMICS_EVERY
	BeamDynamicsStart float32 // CONFIG_BEAMDYNAMICS_START, in [0,1]

	HomingRate uint32 // CONFIG_HOMINGRATE, steps/minute

	InvertMask DirBits // INVERT_MASK, XORed onto out_bits before driving pins

	// Feature flags.
	EnableLaserInterlocks bool
	Enable3Axes           bool
}

// Core is the process-wide, single-owner motion state described in
// spec.md §3, driven by repeated calls to StepTick from a (simulated)
// hardware-timer interrupt.
type Core struct {
	cfg Config
	hal HAL

	planner Planner
	raster  RasterSource

	sup supervisor

	timer   timerController
	profile speedProfile
	bres    bresenham
	shaper  pulseShaper
	beam    beamModulator

	position Position

	currentBlock        *Block
	stepEventsCompleted uint32
	debug               bool
}

// New constructs a Core. hal, planner and raster must be non-nil; use
// internal/simhal for host-side testing.
func New(cfg Config, hal HAL, planner Planner, raster RasterSource) *Core {
	c := &Core{
		cfg:     cfg,
		hal:     hal,
		planner: planner,
		raster:  raster,
	}
	c.sup.raster = raster
	c.timer = timerController{hal: hal}
	c.profile = speedProfile{
		tick:              newAccelTickGenerator(cfg.FCPU, cfg.AccelerationTicksPerSecond),
		timer:             c.timer,
		fcpu:              cfg.FCPU,
		minStepsPerMinute: cfg.MinimumStepsPerMinute,
	}
	c.shaper = pulseShaper{hal: hal, pulseMicros: cfg.PulseMicroseconds, fcpu: cfg.FCPU}
	c.beam = newBeamModulator(hal, cfg.BeamDynamicsEvery, cfg.BeamDynamicsStart, raster)
	return c
}

// SetDebug toggles verbose logging of motion-core transitions.
func (c *Core) SetDebug(on bool) { c.debug = on }

// Init configures the HAL for idle operation and zeroes position. It
// must be called once before StartProcessing.
func (c *Core) Init() {
	c.hal.DisableStepInterrupt()
	c.hal.ResetStepBits()
	c.hal.SetLaserOff()
	c.position = Position{}
	c.sup.Resume()
}

// StartProcessing arms the step-event interrupt.
func (c *Core) StartProcessing() error {
	if c.sup.Processing() {
		return ErrAlreadyProcessing
	}
	c.sup.setProcessing(true)
	c.hal.EnableStepInterrupt()
	return nil
}

// StopProcessing disarms the step-event interrupt.
func (c *Core) StopProcessing() error {
	if !c.sup.Processing() {
		return ErrNotProcessing
	}
	c.hal.DisableStepInterrupt()
	c.sup.setProcessing(false)
	return nil
}

// Processing reports whether the step interrupt is armed.
func (c *Core) Processing() bool { return c.sup.Processing() }

// RequestStop latches a stop reason (idempotently) and instructs the
// serial transport to stop. The next StepTick observes the latched
// request, disarms the step interrupt and resets the planner's block
// buffer.
func (c *Core) RequestStop(kind StopStatus) {
	c.sup.RequestStop(kind)
}

func (c *Core) StopStatus() StopStatus { return c.sup.StopStatus() }
func (c *Core) StopRequested() bool    { return c.sup.StopRequested() }

// StopResume clears the stop flag and status without affecting position.
func (c *Core) StopResume() {
	c.sup.Resume()
}

// GetPositionX/Y/Z return the current absolute position in
// millimetres (steps / steps-per-mm), offset by the configured origin.
func (c *Core) GetPositionX() float64 { return c.stepsToMM(c.position.X, 0) }
func (c *Core) GetPositionY() float64 { return c.stepsToMM(c.position.Y, 1) }
func (c *Core) GetPositionZ() float64 { return c.stepsToMM(c.position.Z, 2) }

func (c *Core) stepsToMM(steps int64, axis int) float64 {
	spmm := c.cfg.StepsPerMM[axis]
	if spmm == 0 {
		return 0
	}
	return float64(steps)/spmm + c.cfg.OriginOffsetMM[axis]
}

// SetPosition overwrites the absolute position from millimetre
// coordinates, converting through steps-per-mm and the origin offset.
func (c *Core) SetPosition(x, y, z float64) {
	c.position.X = c.mmToSteps(x, 0)
	c.position.Y = c.mmToSteps(y, 1)
	c.position.Z = c.mmToSteps(z, 2)
}

func (c *Core) mmToSteps(mm float64, axis int) int64 {
	return int64((mm - c.cfg.OriginOffsetMM[axis]) * c.cfg.StepsPerMM[axis])
}

// Diagnostics is a read-only snapshot of Motion State, taken under the
// same critical section the raster read uses so it never observes a
// torn state.
type Diagnostics struct {
	HasBlock            bool
	BlockType           BlockType
	StepEventsCompleted uint32
	StepEventCount      uint32
	AdjustedRate        uint32
	Position            Position
	StopStatus          StopStatus
	Processing          bool
}

// Snapshot returns a Diagnostics value describing the current state.
func (c *Core) Snapshot() Diagnostics {
	c.hal.EnterCritical()
	d := Diagnostics{
		HasBlock:            c.currentBlock != nil,
		StepEventsCompleted: c.stepEventsCompleted,
		AdjustedRate:        c.profile.adjustedRate,
		Position:            c.position,
		StopStatus:          c.sup.StopStatus(),
		Processing:          c.sup.Processing(),
	}
	if c.currentBlock != nil {
		d.BlockType = c.currentBlock.Type
		d.StepEventCount = c.currentBlock.StepEventCount
	}
	c.hal.ExitCritical()
	return d
}

func (c *Core) logf(format string, args ...any) {
	if c.debug {
		debugLogf(format, args...)
	}
}
