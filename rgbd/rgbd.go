// Package rgbd implements the experimental RGBD bias: a small, fixed-size,
// position-indexed memory that nudges the context model's predicted
// distribution toward whichever symbol last occupied the current
// Fibonacci-mod-10 walk position. The name is inherited from the source
// this was ported from and has no spatial meaning here.
package rgbd

const (
	tDim = 60
	xDim = 10
	yDim = 10
)

// Options controls whether and how strongly the bias is applied. The zero
// value disables the bias.
type Options struct {
	UseRGBD   bool
	PhiWeight float64
}

// DefaultOptions is the process-wide singleton options value, mirroring the
// source's GlobalOptions. Package Compress/Decompress entry points read
// this; callers that build their own Coder may instead hold an Options
// value of their own.
var DefaultOptions = Options{UseRGBD: false, PhiWeight: 0.15}

// SetOptions updates DefaultOptions. A weight <= 0 leaves the current
// weight unchanged, matching the source setter's contract.
func SetOptions(useRGBD bool, weight float64) {
	DefaultOptions.UseRGBD = useRGBD
	if weight > 0 {
		DefaultOptions.PhiWeight = weight
	}
}

// State is the position-indexed memory grid plus the Fibonacci walk that
// addresses it. The zero value is a freshly reset state.
type State struct {
	visits [tDim][xDim][yDim]uint16
	last   [tDim][xDim][yDim]byte
	fibN   int
	fibNP1 int
	index  uint64
}

// New returns a freshly reset State.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset zeroes the grid and rewinds the Fibonacci walk, as required before
// each independent encode or decode operation.
func (s *State) Reset() {
	*s = State{fibN: 0, fibNP1: 1, index: 0}
}

func (s *State) coords() (t, x, y int) {
	return int(s.index % tDim), s.fibN, s.fibNP1
}

// ApplyBias adds a small additive bonus to the symbol that last occupied
// the current walk position, then renormalizes p to sum to 1. It is a
// no-op when opts.UseRGBD is false, before any symbol has been processed,
// or when the current cell has never been visited.
func (s *State) ApplyBias(p *[256]float64, opts Options) {
	if !opts.UseRGBD || s.index == 0 {
		return
	}
	t, x, y := s.coords()
	v := s.visits[t][x][y]
	if v == 0 {
		return
	}
	sym := s.last[t][x][y]
	w := opts.PhiWeight * float64(v) / (float64(v) + 10)
	p[sym] += w

	sum := 0.0
	for _, q := range p {
		sum += q
	}
	if sum > 0 {
		for k := range p {
			p[k] /= sum
		}
	}
}

// Update records that s just coded symbol sym, using the coordinates that
// were current before this call, then advances the Fibonacci walk.
func (s *State) Update(sym byte) {
	t, x, y := s.coords()
	s.last[t][x][y] = sym
	if s.visits[t][x][y] != 0xFFFF {
		s.visits[t][x][y]++
	}
	s.fibN, s.fibNP1 = s.fibNP1, (s.fibN+s.fibNP1)%10
	s.index++
}
