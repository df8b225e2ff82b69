// Package rangecoder implements a 64-bit range (arithmetic) coder over a
// 256-symbol alphabet, generalizing the classic Witten-Neal-Cleary binary
// coder (E1/E2/E3 renormalization, pending-bit carry propagation) to
// integer cumulative frequency tables produced by package quantize.
package rangecoder

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/fumin/phicomp/quantize"
)

// ErrInvalidSymbol is returned by Decode when the coder's current scaled
// value cannot be located in the cumulative frequency table. It should be
// unreachable for a table produced by package quantize; seeing it indicates
// the encoder and decoder have desynced.
var ErrInvalidSymbol = errors.New("rangecoder: scaled value not found in table")

const (
	top      = ^uint64(0)
	half     = uint64(1) << 63
	qtr      = uint64(1) << 62
	threeQtr = 3 * (uint64(1) << 62)
)

// totalShift is log2(quantize.Total); quantize.Total is guaranteed to be a
// power of two, which lets range narrowing use shifts instead of a general
// 128-bit division.
var totalShift = uint(bits.TrailingZeros64(uint64(quantize.Total)))

// scaleDown computes floor(rng*cum/quantize.Total) without overflowing a
// 64-bit intermediate, using a 128-bit multiply followed by a shift. rng==0
// is the encoding of the one range a uint64 cannot hold, the full 2^64
// spanned by a freshly initialized Encoder/Decoder (high-low+1 wraps to 0);
// for that case the product is cum*2^64, so the shift alone gives the
// result mod 2^64, which is exactly what the wraparound low/high arithmetic
// in Encode/Decode expects.
func scaleDown(rng uint64, cum uint32) uint64 {
	if rng == 0 {
		return uint64(cum) << (64 - totalShift)
	}
	hi, lo := bits.Mul64(rng, uint64(cum))
	return hi<<(64-totalShift) | lo>>totalShift
}

// Encoder is a range coder in the process of encoding a symbol stream.
type Encoder struct {
	low, high uint64
	pending   uint64
	w         bitWriter
}

// NewEncoder returns a fresh Encoder ready to code the first symbol.
func NewEncoder() *Encoder {
	return &Encoder{high: top}
}

// Encode narrows the current interval to sym's slice of table and emits
// any bits that renormalization now makes determinate.
func (e *Encoder) Encode(table quantize.Table, sym byte) {
	rng := e.high - e.low + 1
	lowOff := scaleDown(rng, table.Cum[sym])
	highOff := scaleDown(rng, table.Cum[int(sym)+1])
	e.low = e.low + lowOff
	e.high = e.low + highOff - lowOff - 1

	for {
		switch {
		case e.high < half:
			e.emit(0)
		case e.low >= half:
			e.emit(1)
			e.low -= half
			e.high -= half
		case e.low >= qtr && e.high < threeQtr:
			e.pending++
			e.low -= qtr
			e.high -= qtr
		default:
			return
		}
		e.low *= 2
		e.high = e.high*2 + 1
	}
}

// emit writes bit followed by e.pending bits of its complement, clearing
// pending, implementing the "bit plus follow" carry propagation.
func (e *Encoder) emit(bit uint64) {
	e.w.writeBit(bit)
	follow := uint64(0)
	if bit == 0 {
		follow = 1
	}
	for e.pending > 0 {
		e.w.writeBit(follow)
		e.pending--
	}
}

// Finish flushes the final disambiguating bit, followed by one follow bit
// per pending E3 straddle plus one more, and returns the packed output. The
// Encoder must not be used again after Finish.
func (e *Encoder) Finish() []byte {
	e.pending++
	if e.low < qtr {
		e.emit(0)
	} else {
		e.emit(1)
	}
	return e.w.bytes()
}

// Decoder is a range coder in the process of decoding a symbol stream.
type Decoder struct {
	low, high, code uint64
	r               bitReader
}

// NewDecoder returns a Decoder seeded from the first 64 bits of data
// (zero-padded if data is shorter), ready to decode the first symbol.
func NewDecoder(data []byte) *Decoder {
	d := &Decoder{high: top, r: bitReader{data: data}}
	for i := 0; i < 64; i++ {
		d.code = d.code<<1 | d.r.readBit()
	}
	return d
}

// scaledValue computes clamp(floor(((code-low+1)*Total-1)/range), 0, Total-1).
// rng==0 stands for the one range a uint64 cannot hold, the full 2^64
// spanned by a freshly initialized Decoder; dividing by 2^64 is just taking
// the high word of the 128-bit numerator, so bits.Div64 is skipped entirely
// (it would otherwise panic on a zero divisor). codeMinusLowPlus1==0 likewise
// stands for 2^64 (code==top over that full range), for which the formula
// gives Total-1.
func scaledValue(codeMinusLowPlus1 uint64, rng uint64) uint32 {
	if codeMinusLowPlus1 == 0 {
		return quantize.Total - 1
	}
	hi, lo := bits.Mul64(codeMinusLowPlus1, uint64(quantize.Total))
	if lo == 0 {
		hi--
		lo = ^uint64(0)
	} else {
		lo--
	}
	var q uint64
	if rng == 0 {
		q = hi
	} else {
		q, _ = bits.Div64(hi, lo, rng)
	}
	if q >= uint64(quantize.Total) {
		q = uint64(quantize.Total) - 1
	}
	return uint32(q)
}

// Decode returns the symbol whose slice of table contains the coder's
// current scaled value, narrows the interval the same way Encode did, and
// renormalizes, pulling fresh bits from the input as needed. It returns
// ErrInvalidSymbol if no symbol's slice contains the scaled value.
func (d *Decoder) Decode(table quantize.Table) (byte, error) {
	rng := d.high - d.low + 1
	scaled := scaledValue(d.code-d.low+1, rng)

	sym, ok := symbolFor(table, scaled)
	if !ok {
		return 0, ErrInvalidSymbol
	}

	lowOff := scaleDown(rng, table.Cum[sym])
	highOff := scaleDown(rng, table.Cum[int(sym)+1])
	d.low = d.low + lowOff
	d.high = d.low + highOff - lowOff - 1

	for {
		switch {
		case d.high < half:
		case d.low >= half:
			d.low -= half
			d.high -= half
			d.code -= half
		case d.low >= qtr && d.high < threeQtr:
			d.low -= qtr
			d.high -= qtr
			d.code -= qtr
		default:
			return sym, nil
		}
		d.low *= 2
		d.high = d.high*2 + 1
		d.code = d.code*2 + d.r.readBit()
	}
}

// symbolFor finds the smallest symbol whose cumulative upper bound exceeds
// scaled, via binary search over the monotonic Cum table, then verifies
// scaled actually falls within that symbol's [Cum[lo], Cum[lo+1]) slice.
func symbolFor(table quantize.Table, scaled uint32) (byte, bool) {
	lo, hi := 0, 255
	for lo < hi {
		mid := (lo + hi) / 2
		if scaled < table.Cum[mid+1] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if scaled < table.Cum[lo] || scaled >= table.Cum[lo+1] {
		return 0, false
	}
	return byte(lo), true
}
