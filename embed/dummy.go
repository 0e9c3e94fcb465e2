package embed

import (
	"context"
)

// Dummy is a deterministic offline embedder, useful in tests and as a
// fallback when no provider is configured. Vectors are byte-frequency
// projections, not semantically meaningful.
type Dummy struct{}

func (Dummy) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 768)
	for i, ch := range []byte(text) {
		vec[i%768] += float32(ch) / 255.0
	}
	return vec, nil
}
