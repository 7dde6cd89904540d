package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

func TestFingerprintNormalizesText(t *testing.T) {
	base := Fingerprint("El café estaba frío")

	assert.Equal(t, base, Fingerprint("  el CAFÉ estaba frío  "))
	assert.NotEqual(t, base, Fingerprint("el café estaba caliente"))
	assert.Len(t, base, 64)
}

func TestMemoryCacheRoundtrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	analysis := domain.Analysis{
		Sentiment: domain.SentimentNegative,
		Topic:     domain.TopicProductQuality,
		Summary:   "Cliente insatisfecho con temperatura del café",
	}
	c.Set(ctx, "fp-1", analysis, time.Minute)

	got, ok := c.Get(ctx, "fp-1")
	require.True(t, ok)
	assert.Equal(t, analysis, got)

	_, ok = c.Get(ctx, "fp-missing")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	c.Set(ctx, "fp-1", domain.Analysis{Sentiment: domain.SentimentNeutral}, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "fp-1")
	assert.False(t, ok)
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	c.Set(ctx, "fp-old", domain.Analysis{Summary: "old"}, time.Minute)
	time.Sleep(time.Millisecond)
	c.Set(ctx, "fp-mid", domain.Analysis{Summary: "mid"}, time.Minute)
	time.Sleep(time.Millisecond)
	c.Set(ctx, "fp-new", domain.Analysis{Summary: "new"}, time.Minute)

	_, ok := c.Get(ctx, "fp-old")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get(ctx, "fp-mid")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "fp-new")
	assert.True(t, ok)
}

func TestMemoryCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	for i := 0; i < 5; i++ {
		c.Set(ctx, "fp-same", domain.Analysis{Summary: fmt.Sprintf("v%d", i)}, time.Minute)
	}

	got, ok := c.Get(ctx, "fp-same")
	require.True(t, ok)
	assert.Equal(t, "v4", got.Summary)
}
