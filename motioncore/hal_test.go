package motioncore

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestConfigureTimer_PicksSmallestPrescaler(t *testing.T) {
	c := qt.New(t)

	prescaler, ceiling, actual := configureTimer(1000)
	c.Assert(prescaler, qt.Equals, uint32(1))
	c.Assert(ceiling, qt.Equals, uint16(1000))
	c.Assert(actual, qt.Equals, uint32(1000))
}

func TestConfigureTimer_StepsUpTiers(t *testing.T) {
	c := qt.New(t)

	// Just over the 16-bit boundary for prescaler 1 should move to
	// prescaler 8.
	prescaler, ceiling, _ := configureTimer(0x10000)
	c.Assert(prescaler, qt.Equals, uint32(8))
	c.Assert(ceiling, qt.Equals, uint16(0x10000>>3))
}

func TestConfigureTimer_ClampsAtSaturation(t *testing.T) {
	c := qt.New(t)

	// A period requiring more than 1024*0xFFFF cycles must clamp to
	// the slowest possible period rather than overflow.
	huge := uint32(1024)*0xFFFF + 1_000_000
	prescaler, ceiling, actual := configureTimer(huge)
	c.Assert(prescaler, qt.Equals, uint32(1024))
	c.Assert(ceiling, qt.Equals, uint16(0xFFFF))
	c.Assert(actual, qt.Equals, uint32(1024)*0xFFFF)
}
