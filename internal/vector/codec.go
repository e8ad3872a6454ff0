// Package vector holds the numeric helpers behind vector search: the on-disk
// byte codec, cosine similarity and bounded top-k selection.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/starford/seekr/internal/apperr"
)

// Encode converts a []float32 to little-endian bytes for BLOB storage.
func Encode(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode converts bytes produced by Encode back to a []float32.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector: decode: %d bytes is not a multiple of 4", len(data))
	}
	if len(data) == 0 {
		return nil, nil
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero vector
// has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", apperr.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Clamp rounding drift so callers can rely on the range.
	return math.Max(-1, math.Min(1, sim)), nil
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// Score maps a cosine similarity from [-1,1] onto [0,1].
func Score(similarity float64) float64 {
	return (similarity + 1) / 2
}
