package model

// Percent is a multiplier expressed in hundredths (100 = 1x).
type Percent uint32

// SatSub returns a-b, floored at 0.
func SatSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

// ClampCondition caps a condition percentage at FullCondition.
func ClampCondition(v uint32) uint32 {
	if v > FullCondition {
		return FullCondition
	}
	return v
}

// scale computes v*pct/100 in 64 bits. The store clamps tool conditions to
// [0,100] on write; larger inputs saturate.
func scale(v, pct uint32) uint32 {
	n := uint64(v) * uint64(pct) / 100
	if n > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n)
}
