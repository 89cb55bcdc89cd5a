package simhal

import "github.com/laserctl/motioncore"

// Planner is a synthetic, in-memory stand-in for the upstream planner
// queue, sized and shaped like the amken3d-gopper planner fragment's
// move queue: a slice-backed FIFO with a simple peek/pop API.
type Planner struct {
	queue []*motioncore.Block
}

func NewPlanner() *Planner { return &Planner{} }

// Enqueue appends a block to the tail of the queue.
func (p *Planner) Enqueue(b *motioncore.Block) { p.queue = append(p.queue, b) }

// Len reports the number of queued blocks.
func (p *Planner) Len() int { return len(p.queue) }

func (p *Planner) GetCurrentBlock() (*motioncore.Block, bool) {
	if len(p.queue) == 0 {
		return nil, false
	}
	return p.queue[0], true
}

func (p *Planner) DiscardCurrentBlock() {
	if len(p.queue) == 0 {
		return
	}
	p.queue = p.queue[1:]
}

func (p *Planner) ResetBlockBuffer() {
	p.queue = nil
}
