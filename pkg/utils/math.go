package utils

import "math"

// NormalizeL2 scales vec in place to unit length. Accumulation happens in
// float64 so long vectors do not lose precision. A zero vector stays zero.
func NormalizeL2(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] *= inv
	}
}
