package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbeddingService_Metadata(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, ModelName, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())

	assert.Equal(t, 64, NewEmbeddingService(64).Dimensions())
}

func TestEmbeddingService_Embed(t *testing.T) {
	svc := NewEmbeddingService(256)
	ctx := context.Background()

	vec, err := svc.Embed(ctx, "Quarterly budget report for finance")
	require.NoError(t, err)
	require.Len(t, vec, 256)
	assert.InDelta(t, 1.0, norm(vec), 1e-5)

	again, err := svc.Embed(ctx, "quarterly BUDGET report, for finance!")
	require.NoError(t, err)
	assert.Equal(t, vec, again, "case and punctuation are ignored")
}

func TestEmbeddingService_Similarity(t *testing.T) {
	svc := NewEmbeddingService(384)
	ctx := context.Background()

	query, err := svc.Embed(ctx, "budget report")
	require.NoError(t, err)
	related, err := svc.Embed(ctx, "the annual budget report was approved")
	require.NoError(t, err)
	unrelated, err := svc.Embed(ctx, "hiking trails in the mountains")
	require.NoError(t, err)

	assert.Greater(t, domain.CosineSimilarity(query, related), domain.CosineSimilarity(query, unrelated))
}

func TestEmbeddingService_Blank(t *testing.T) {
	svc := NewEmbeddingService(32)
	for _, text := range []string{"", "   ", "\n\t", "--- !!! ..."} {
		vec, err := svc.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Nil(t, vec, "text %q", text)
	}
}

func TestEmbeddingService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbeddingService(32).Embed(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"héllo", "world", "42"}, tokenize("Héllo, World-42"))
	assert.Empty(t, tokenize("  "))
}
