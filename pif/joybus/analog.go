package joybus

import "golang.org/x/exp/constraints"

// AxisPair is one two-dimensional analog reading: a stick's x/y deflection
// or the left/right halves of a trigger or button pair.
type AxisPair[T constraints.Integer] struct {
	X, Y T
}

// Center re-bases a raw reading against its origin.  The subtraction wraps
// around in the stored width, no clamping is applied.
func Center[T constraints.Integer](raw, origin T) T {
	return raw - origin
}

// Center re-bases both axes independently against origin.
func (p AxisPair[T]) Center(origin AxisPair[T]) AxisPair[T] {
	return AxisPair[T]{Center(p.X, origin.X), Center(p.Y, origin.Y)}
}

// WidenU4 expands a 4-bit analog sample to 8 bits by replicating the nibble,
// mapping 0x0..0xf onto the full 0x00..0xff span.  A plain left shift would
// cap the range at 0xf0.
func WidenU4(v byte) uint8 {
	v &= 0x0f
	return v<<4 | v
}

// widenPacked splits a byte holding two 4-bit samples, first sample in the
// high nibble.
func widenPacked(b byte) AxisPair[uint8] {
	return AxisPair[uint8]{WidenU4(b >> 4), WidenU4(b)}
}
