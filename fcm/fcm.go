// Package fcm implements the Fibonacci Context Model, an adaptive
// multi-order byte-context predictor. Predictions from several context
// lengths ("orders") are mixed with golden-ratio-weighted escape so that
// longer, more specific contexts dominate once they have seen enough data,
// while every symbol always retains a strictly positive probability.
package fcm

import (
	"math"

	"github.com/pkg/errors"
)

// Symbol is a single byte of the stream being modeled.
type Symbol = byte

// symbolCounts maps an observed symbol to the number of times it has
// followed a given context.
type symbolCounts map[Symbol]uint32

// DefaultOrders is the order set used when none is supplied, matching the
// reference implementation's {2, 3, 5, 8, 13}.
var DefaultOrders = []int{2, 3, 5, 8, 13}

var phi = (1 + math.Sqrt(5)) / 2

// Model is an adaptive context model over a stream of Symbols.
type Model struct {
	orders  []int
	tables  []map[string]symbolCounts
	history []Symbol
	k       int // largest order
}

// New returns a Model configured with orders, a non-empty strictly
// increasing sequence of positive context lengths. It returns an error
// wrapping ErrEmptyConfiguration if orders is empty.
func New(orders []int) (*Model, error) {
	if len(orders) == 0 {
		return nil, errors.Wrap(ErrEmptyConfiguration, "fcm.New")
	}
	o := make([]int, len(orders))
	copy(o, orders)
	m := &Model{
		orders: o,
		tables: make([]map[string]symbolCounts, len(o)),
		k:      o[len(o)-1],
	}
	for i := range m.tables {
		m.tables[i] = make(map[string]symbolCounts)
	}
	return m, nil
}

// contextKey packs the last `order` symbols of history into a map key.
func contextKey(history []Symbol, order int) string {
	return string(history[len(history)-order:])
}

// Update folds s into every order's table keyed on the context that
// preceded it, then appends s to history, evicting the oldest symbol once
// history exceeds the largest configured order.
func (m *Model) Update(s Symbol) {
	for i, order := range m.orders {
		if len(m.history) < order {
			continue
		}
		key := contextKey(m.history, order)
		counts := m.tables[i][key]
		if counts == nil {
			counts = make(symbolCounts, 1)
			m.tables[i][key] = counts
		}
		counts[s]++
	}

	m.history = append(m.history, s)
	if len(m.history) > m.k {
		copy(m.history, m.history[1:])
		m.history = m.history[:m.k]
	}
}

// Probabilities returns a length-256 vector of predicted probabilities for
// the next symbol, summing to 1, every entry strictly positive. Longer
// contexts (higher order index) are weighted by phi^i; any probability mass
// not claimed by a matching context is spread uniformly as escape.
func (m *Model) Probabilities() [256]float64 {
	var p [256]float64
	totalWeight := 0.0

	for i := len(m.orders) - 1; i >= 0; i-- {
		order := m.orders[i]
		if len(m.history) < order {
			continue
		}
		counts, ok := m.tables[i][contextKey(m.history, order)]
		if !ok {
			continue
		}
		var contextTotal uint32
		for _, c := range counts {
			contextTotal += c
		}
		if contextTotal == 0 {
			continue
		}
		w := math.Pow(phi, float64(i))
		for sym, c := range counts {
			p[sym] += w * float64(c) / float64(contextTotal)
		}
		totalWeight += w
	}

	escape := math.Pow(phi, -float64(len(m.orders)))
	if totalWeight > 0 {
		for k := range p {
			p[k] = (p[k] / totalWeight) * (1 - escape)
		}
	} else {
		escape = 1
	}
	for k := range p {
		p[k] += escape / 256
	}
	return p
}

// Reset discards all learned tables and history, as if the Model had just
// been constructed with the same orders.
func (m *Model) Reset() {
	for i := range m.tables {
		m.tables[i] = make(map[string]symbolCounts)
	}
	m.history = nil
}
