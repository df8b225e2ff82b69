// Package phicomp implements a lossless byte-stream compressor built from
// an adaptive Fibonacci Context Model (package fcm), an optional
// position-indexed bias overlay (package rgbd), a deterministic probability
// quantizer (package quantize), and a 64-bit range coder (package
// rangecoder). See the package-level Compress and Decompress functions for
// the simple, process-global-state entry point, and Coder for a safer
// per-operation one.
package phicomp

import (
	"github.com/pkg/errors"

	"github.com/fumin/phicomp/fcm"
	"github.com/fumin/phicomp/quantize"
	"github.com/fumin/phicomp/rangecoder"
	"github.com/fumin/phicomp/rgbd"
)

// Options configures a Coder.
type Options struct {
	// Orders is the FCM context-length set. Defaults to fcm.DefaultOrders
	// when nil.
	Orders []int
	// RGBD controls the experimental position-indexed bias.
	RGBD rgbd.Options
}

// Coder holds the model orders, bias options, and RGBD memory for a series
// of independent compress/decompress operations. Unlike the package-level
// Compress/Decompress functions, a Coder's RGBD state is private to it, so
// distinct Coders never race with each other. Call ResetRGBD before each
// independent operation that uses RGBD, per the contract in package rgbd.
type Coder struct {
	opts Options
	rgbd *rgbd.State
}

// NewCoder returns a Coder with its own freshly reset RGBD state.
func NewCoder(opts Options) *Coder {
	if opts.Orders == nil {
		opts.Orders = fcm.DefaultOrders
	}
	return &Coder{opts: opts, rgbd: rgbd.New()}
}

// ResetRGBD zeroes this Coder's RGBD memory, as required before each
// independent operation when Options.RGBD.UseRGBD is true.
func (c *Coder) ResetRGBD() {
	c.rgbd.Reset()
}

// Compress encodes data into the self-describing PhiComp container format.
// An empty input produces exactly the 14-byte header, with no coded body.
func (c *Coder) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return writeHeader(nil, 0), nil
	}

	model, err := fcm.New(c.opts.Orders)
	if err != nil {
		return nil, errors.Wrap(err, "phicomp: Compress")
	}

	enc := rangecoder.NewEncoder()
	for _, sym := range data {
		probs := model.Probabilities()
		c.rgbd.ApplyBias(&probs, c.opts.RGBD)
		table := quantize.Quantize(probs)

		enc.Encode(table, sym)

		model.Update(sym)
		c.rgbd.Update(sym)
	}

	return writeHeader(enc.Finish(), uint64(len(data))), nil
}

// Decompress validates data's header and decodes its body back into the
// original bytes. It fails with ErrInvalidContainer if the header is
// malformed.
func (c *Coder) Decompress(data []byte) ([]byte, error) {
	originalSize, body, err := parseHeader(data)
	if err != nil {
		return nil, errors.Wrap(err, "phicomp: Decompress")
	}
	if originalSize == 0 {
		return []byte{}, nil
	}

	model, err := fcm.New(c.opts.Orders)
	if err != nil {
		return nil, errors.Wrap(err, "phicomp: Decompress")
	}

	dec := rangecoder.NewDecoder(body)
	out := make([]byte, 0, originalSize)
	for i := uint64(0); i < originalSize; i++ {
		probs := model.Probabilities()
		c.rgbd.ApplyBias(&probs, c.opts.RGBD)
		table := quantize.Quantize(probs)

		sym, err := dec.Decode(table)
		if err != nil {
			return nil, errors.Wrap(ErrInternalInvariantViolation, err.Error())
		}
		out = append(out, sym)

		model.Update(sym)
		c.rgbd.Update(sym)
	}

	if uint64(len(out)) != originalSize {
		return nil, errors.Wrap(ErrInvalidContainer, "phicomp: Decompress: size mismatch")
	}
	return out, nil
}

// globalRGBD is the process-wide RGBD memory backing the package-level
// Compress/Decompress functions, matching the original implementation's
// global state contract: callers using RGBD must serialize concurrent
// operations themselves and call ResetRGBDState before each one.
var globalRGBD = rgbd.New()

// Compress encodes data using the default FCM orders and the process-wide
// RGBD options set via SetRGBDOptions.
func Compress(data []byte) ([]byte, error) {
	c := &Coder{opts: Options{Orders: fcm.DefaultOrders, RGBD: rgbd.DefaultOptions}, rgbd: globalRGBD}
	return c.Compress(data)
}

// Decompress decodes data using the default FCM orders and the
// process-wide RGBD options set via SetRGBDOptions.
func Decompress(data []byte) ([]byte, error) {
	c := &Coder{opts: Options{Orders: fcm.DefaultOrders, RGBD: rgbd.DefaultOptions}, rgbd: globalRGBD}
	return c.Decompress(data)
}

// SetRGBDOptions updates the process-wide RGBD options used by the
// package-level Compress/Decompress. A weight <= 0 leaves the current
// weight unchanged.
func SetRGBDOptions(useRGBD bool, weight float64) {
	rgbd.SetOptions(useRGBD, weight)
}

// ResetRGBDState zeroes the process-wide RGBD memory. Callers must call
// this before each independent Compress/Decompress that uses RGBD.
func ResetRGBDState() {
	globalRGBD.Reset()
}
