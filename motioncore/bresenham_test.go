package motioncore

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBresenham_PureXLine(t *testing.T) {
	c := qt.New(t)

	block := &Block{StepsX: 10, StepsY: 0, StepsZ: 0, StepEventCount: 10, Direction: DirX}
	var b bresenham
	b.Seed(block.StepEventCount)

	var pos Position
	xPulses := 0
	for i := uint32(0); i < block.StepEventCount; i++ {
		out := b.Step(block, &pos)
		if out&DirX != 0 {
			xPulses++
		}
		c.Assert(out&DirY, qt.Equals, DirBits(0))
		c.Assert(out&DirZ, qt.Equals, DirBits(0))
		c.Assert(b.counterX > -int64(block.StepEventCount) && b.counterX <= int64(block.StepEventCount), qt.IsTrue)
	}

	c.Assert(xPulses, qt.Equals, 10)
	c.Assert(pos.X, qt.Equals, int64(10))
	c.Assert(pos.Y, qt.Equals, int64(0))
}

func TestBresenham_Diagonal3x4(t *testing.T) {
	c := qt.New(t)

	block := &Block{StepsX: 3, StepsY: 4, StepsZ: 0, StepEventCount: 4, Direction: DirX | DirY}
	var b bresenham
	b.Seed(block.StepEventCount)

	var pos Position
	var xEvents []int
	xPulses, yPulses := 0, 0
	for i := 0; i < int(block.StepEventCount); i++ {
		out := b.Step(block, &pos)
		if out&DirX != 0 {
			xPulses++
			xEvents = append(xEvents, i+1)
		}
		if out&DirY != 0 {
			yPulses++
		}
	}

	c.Assert(xPulses, qt.Equals, 3)
	c.Assert(yPulses, qt.Equals, 4)
	c.Assert(pos.X, qt.Equals, int64(3))
	c.Assert(pos.Y, qt.Equals, int64(4))
	// Midpoint-seeded Bresenham (counter_a > 0 triggers a pulse, per
	// spec.md §4.4) places the X pulses on events 1, 3, 4.
	c.Assert(xEvents, qt.DeepEquals, []int{1, 3, 4})
}
