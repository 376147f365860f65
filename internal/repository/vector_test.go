package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorEncodeDecodeRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.14159, 0}

	out, err := decodeVector(encodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeVectorRejectsTruncatedBlob(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity(a, []float32{-1, 0, 0}), 1e-9)

	// Magnitude does not change the score.
	assert.InDelta(t, 1.0, cosineSimilarity(a, []float32{5, 0, 0}), 1e-9)

	// Degenerate inputs score 0 rather than erroring.
	assert.Zero(t, cosineSimilarity(a, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity(a, []float32{0, 0, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}
