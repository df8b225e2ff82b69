// Package quantize converts a 256-entry floating-point probability vector
// into 256-entry integer cumulative frequency tables summing exactly to a
// fixed total, deterministically and identically regardless of caller
// (encoder or decoder), so that both sides of a range-coded stream agree
// byte for byte on the distribution used to code any given symbol.
package quantize

import (
	"math"
	"sort"
)

// Total is the fixed cumulative frequency total every quantized table sums
// to: 2^16.
const Total = 1 << 16

// Table is a quantized distribution: Freq[k] is the integer frequency of
// symbol k, and Cum[k] is the cumulative frequency before symbol k, with
// Cum[256] == Total.
type Table struct {
	Freq [256]uint32
	Cum  [257]uint32
}

// Quantize deterministically maps p (any non-negative, possibly
// unnormalized vector) onto a Table whose frequencies sum to Total, every
// frequency at least 1, with stable tie-breaking so that two equal inputs
// always produce identical output.
func Quantize(p [256]float64) Table {
	p = normalize(p)

	var freq [256]uint32
	var frac [256]float64
	var sum uint64
	for k := 0; k < 256; k++ {
		raw := p[k] * Total
		floor := math.Floor(raw)
		frac[k] = raw - floor

		f := uint32(floor)
		if f < 1 {
			f = 1
		}
		freq[k] = f
		sum += uint64(f)
	}

	switch {
	case sum < Total:
		distributeExtra(&freq, frac, uint32(Total-sum))
	case sum > Total:
		removeExcess(&freq, frac, uint32(sum-Total))
	}

	var t Table
	t.Freq = freq
	for k := 0; k < 256; k++ {
		t.Cum[k+1] = t.Cum[k] + freq[k]
	}
	return t
}

// normalize floors non-positive entries to a tiny epsilon and rescales so
// the vector sums to 1, falling back to a uniform distribution if the
// input sums to zero or less.
func normalize(p [256]float64) [256]float64 {
	sum := 0.0
	for k := range p {
		if p[k] <= 0 {
			p[k] = 1e-12
		}
		sum += p[k]
	}
	if sum <= 0 {
		for k := range p {
			p[k] = 1.0 / 256
		}
		return p
	}
	for k := range p {
		p[k] /= sum
	}
	return p
}

// sortedIndices returns 0..255 stable-sorted by less, which must impose a
// strict order when frac values tie (ascending k).
func sortedIndices(frac [256]float64, descending bool) []int {
	idx := make([]int, 256)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if descending {
			return frac[idx[a]] > frac[idx[b]]
		}
		return frac[idx[a]] < frac[idx[b]]
	})
	return idx
}

func distributeExtra(freq *[256]uint32, frac [256]float64, extra uint32) {
	idx := sortedIndices(frac, true)
	for k := uint32(0); k < extra; k++ {
		freq[idx[int(k%256)]]++
	}
}

func removeExcess(freq *[256]uint32, frac [256]float64, over uint32) {
	idx := sortedIndices(frac, false)
	k := 0
	for over > 0 {
		id := idx[k%256]
		if freq[id] > 1 {
			freq[id]--
			over--
		}
		k++
	}
}
