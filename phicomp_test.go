package phicomp

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

func TestEmptyInput(t *testing.T) {
	c := NewCoder(Options{})
	comp, err := c.Compress(nil)
	if err != nil {
		t.Fatalf("%v", err)
	}
	want := []byte{'P', 'H', 'I', 'C', 0x01, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(comp, want) {
		t.Fatalf("compress(\"\") = % x, want % x", comp, want)
	}

	decomp, err := c.Decompress(comp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(decomp) != 0 {
		t.Errorf("decompress(header) = %v, want empty", decomp)
	}
}

func TestSingleByteHeaderAndRoundTrip(t *testing.T) {
	c := NewCoder(Options{})
	comp, err := c.Compress([]byte{0x41})
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(comp[0:6], []byte{'P', 'H', 'I', 'C', 0x01, 0x01}) {
		t.Fatalf("bad header prefix: % x", comp[0:6])
	}
	if size := binary.LittleEndian.Uint64(comp[6:14]); size != 1 {
		t.Errorf("original size field = %d, want 1", size)
	}

	decomp, err := c.Decompress(comp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(decomp, []byte{0x41}) {
		t.Errorf("decompress = %v, want [0x41]", decomp)
	}
}

func TestAllSingleByteValuesRoundTrip(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := NewCoder(Options{})
		input := []byte{byte(v)}
		comp, err := c.Compress(input)
		if err != nil {
			t.Fatalf("value %d: %v", v, err)
		}
		decomp, err := c.Decompress(comp)
		if err != nil {
			t.Fatalf("value %d: %v", v, err)
		}
		if !bytes.Equal(decomp, input) {
			t.Fatalf("value %d round-tripped to %v", v, decomp)
		}
	}
}

func TestLongRunCompressesSmall(t *testing.T) {
	c := NewCoder(Options{})
	input := bytes.Repeat([]byte{0}, 1000)
	comp, err := c.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(comp) >= 100 {
		t.Errorf("compressed size = %d, want < 100", len(comp))
	}
	decomp, err := c.Decompress(comp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(decomp, input) {
		t.Errorf("round-trip mismatch on long run")
	}
}

func TestRepeatedPatternCompressesSmaller(t *testing.T) {
	c := NewCoder(Options{})
	input := []byte("ABABABABABA")
	comp, err := c.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	body := comp[14:]
	if len(body) >= len(input) {
		t.Errorf("body length = %d, want < %d", len(body), len(input))
	}
	decomp, err := c.Decompress(comp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(decomp, input) {
		t.Errorf("round-trip mismatch: got %q, want %q", decomp, input)
	}
}

func TestHighEntropyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	input := make([]byte, 65536)
	rng.Read(input)

	c := NewCoder(Options{})
	comp, err := c.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(comp) > len(input)*2 {
		t.Errorf("compressed size %d is catastrophically larger than input %d", len(comp), len(input))
	}
	decomp, err := c.Decompress(comp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(decomp, input) {
		t.Errorf("round-trip mismatch on high-entropy input")
	}
}

func TestCorruptedMagicRejected(t *testing.T) {
	c := NewCoder(Options{})
	comp, err := c.Compress([]byte("some data to compress"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	corrupt := append([]byte{}, comp...)
	corrupt[0] = 'X'
	if _, err := c.Decompress(corrupt); err == nil {
		t.Errorf("expected error for corrupted magic")
	}
}

func TestTruncatedContainerRejected(t *testing.T) {
	c := NewCoder(Options{})
	comp, err := c.Compress([]byte("some data to compress"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := c.Decompress(comp[:13]); err == nil {
		t.Errorf("expected error for truncated container")
	}
}

func TestDeterministicWithoutRGBD(t *testing.T) {
	input := []byte("determinism check, determinism check")
	c1 := NewCoder(Options{})
	c2 := NewCoder(Options{})
	comp1, err := c1.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	comp2, err := c2.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(comp1, comp2) {
		t.Errorf("compress is not deterministic across fresh coders")
	}
}

func TestDeterministicWithRGBDAfterReset(t *testing.T) {
	input := []byte("RGBD determinism check payload")
	c := NewCoder(Options{})
	c.opts.RGBD.UseRGBD = true
	c.opts.RGBD.PhiWeight = 0.2

	comp1, err := c.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	c.ResetRGBD()
	comp2, err := c.Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(comp1, comp2) {
		t.Errorf("compress with RGBD is not deterministic across resets")
	}

	c.ResetRGBD()
	decomp, err := c.Decompress(comp1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(decomp, input) {
		t.Errorf("round-trip mismatch with RGBD enabled")
	}
}

func TestPackageLevelGlobalAPI(t *testing.T) {
	ResetRGBDState()
	SetRGBDOptions(false, 0)
	input := []byte("global API smoke test")
	comp, err := Compress(input)
	if err != nil {
		t.Fatalf("%v", err)
	}
	ResetRGBDState()
	decomp, err := Decompress(comp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(decomp, input) {
		t.Errorf("round-trip mismatch via package-level API")
	}
}
