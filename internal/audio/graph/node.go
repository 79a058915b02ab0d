package graph

// Node is an element of the graph.
type Node interface {
	// Dispose disconnects the node and releases it. Calling it twice is safe.
	Dispose()
	base() *node
}

type processor interface {
	process(out [][2]float64)
}

type node struct {
	ctx      *Context
	id       uint64
	kind     string
	proc     processor
	inputs   []*node
	outputs  []*node
	disposed bool

	block int64
	buf   [][2]float64
}

func (n *node) base() *node { return n }

func (n *node) Dispose() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.disposeLocked()
}

func (n *node) disposeLocked() {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, out := range n.outputs {
		out.inputs = without(out.inputs, n)
	}
	for _, in := range n.inputs {
		in.outputs = without(in.outputs, n)
	}
	n.inputs, n.outputs = nil, nil
	if stopper, ok := n.proc.(interface{ stopLocked() }); ok {
		stopper.stopLocked()
	}
	delete(n.ctx.nodes, n.id)
}

// render returns this block's output, computing it once per block so a node
// feeding several outputs does not advance twice.
func (n *node) render(frames int) [][2]float64 {
	if n.block == n.ctx.block && len(n.buf) == frames {
		return n.buf
	}
	if cap(n.buf) < frames {
		n.buf = make([][2]float64, frames)
	}
	n.buf = n.buf[:frames]
	n.proc.process(n.buf)
	n.block = n.ctx.block
	return n.buf
}

// mix sums the node's inputs into out.
func (n *node) mix(out [][2]float64) {
	silence(out)
	for _, in := range n.inputs {
		rendered := in.render(len(out))
		for i := range out {
			out[i][0] += rendered[i][0]
			out[i][1] += rendered[i][1]
		}
	}
}

func without(nodes []*node, target *node) []*node {
	kept := nodes[:0]
	for _, n := range nodes {
		if n != target {
			kept = append(kept, n)
		}
	}
	return kept
}

type mixer struct{ n *node }

func (m mixer) process(out [][2]float64) { m.n.mix(out) }

// inputs adapts a node's mixed inputs to a beep.Streamer.
type inputs struct{ n *node }

func (s inputs) Stream(samples [][2]float64) (int, bool) {
	s.n.mix(samples)
	return len(samples), true
}

func (s inputs) Err() error { return nil }

type destination struct{ *node }

// Dispose is a no-op: the destination lives as long as its context.
func (destination) Dispose() {}
