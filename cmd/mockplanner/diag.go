package main

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyterm"

	"github.com/laserctl/motioncore"
)

// memDisplay is a software tinyfont.Displayer: an in-memory monochrome
// framebuffer standing in for the small status display a real
// controller board wires next to its stepper drivers. It exists so the
// diagnostic terminal below can be exercised on a host with no attached
// hardware, the way internal/simhal stands in for the HAL.
type memDisplay struct {
	w, h int16
	fb   []bool
}

func newMemDisplay(w, h int16) *memDisplay {
	return &memDisplay{w: w, h: h, fb: make([]bool, int(w)*int(h))}
}

func (d *memDisplay) Size() (x, y int16) { return d.w, d.h }

func (d *memDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.w || y >= d.h {
		return
	}
	d.fb[int(y)*int(d.w)+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
}

func (d *memDisplay) Display() error { return nil }

// Render returns the framebuffer as ASCII art, one '#' per lit pixel,
// for dumping to a terminal in place of a real panel.
func (d *memDisplay) Render() string {
	out := make([]byte, 0, int(d.h)*(int(d.w)+1))
	for y := int16(0); y < d.h; y++ {
		for x := int16(0); x < d.w; x++ {
			if d.fb[int(y)*int(d.w)+int(x)] {
				out = append(out, '#')
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

// statusPanel drives a tinyterm.Terminal over a memDisplay, rendering
// Core diagnostics the way a real board would show them on an attached
// character/graphic display.
type statusPanel struct {
	term *tinyterm.Terminal
	disp *memDisplay
}

func newStatusPanel() *statusPanel {
	disp := newMemDisplay(128, 64)
	term := tinyterm.NewTerminal(disp)
	term.Configure(&tinyterm.Config{
		Font:       tinyfont.Picopixel,
		FontHeight: 6,
		FontOffset: 5,
	})
	return &statusPanel{term: term, disp: disp}
}

// Update writes one frame of Core diagnostics to the panel.
func (p *statusPanel) Update(d motioncore.Diagnostics) {
	p.term.ClearDisplay()
	fmt.Fprintf(p.term, "block=%s\n", d.BlockType)
	fmt.Fprintf(p.term, "step %d/%d\n", d.StepEventsCompleted, d.StepEventCount)
	fmt.Fprintf(p.term, "rate=%d\n", d.AdjustedRate)
	fmt.Fprintf(p.term, "pos=%d,%d,%d\n", d.Position.X, d.Position.Y, d.Position.Z)
	fmt.Fprintf(p.term, "stop=%s run=%v\n", d.StopStatus, d.Processing)
}
