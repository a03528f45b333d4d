package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stoppable interface {
	core.CacheRepository
	Stop()
}

func entry(fingerprint string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Fingerprint: fingerprint,
		SenderEmail: "alerts@paypa1.example",
		Result: core.Normalize(core.Success{Result: &core.AnalysisResult{
			IsPhishing:      true,
			ConfidenceScore: 90,
			Reasons:         []string{"Lookalike domain"},
			RiskLevel:       core.RiskHigh,
		}}),
		AnalyzedAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

func repositories(t *testing.T) map[string]stoppable {
	t.Helper()
	logger := zap.NewNop()

	sqlite, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), logger, 0)
	require.NoError(t, err)

	repos := map[string]stoppable{
		"memory": NewMemoryCache(logger, 0),
		"sqlite": sqlite,
	}
	for _, r := range repos {
		t.Cleanup(r.Stop)
	}
	return repos
}

func TestCacheRepository(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("round trip", func(t *testing.T) {
				require.NoError(t, repo.Set(ctx, entry("fp-1", time.Hour)))

				got, err := repo.Get(ctx, "fp-1")
				require.NoError(t, err)
				assert.Equal(t, "alerts@paypa1.example", got.SenderEmail)
				assert.True(t, got.Result.IsPhishing)
				assert.Equal(t, core.RiskHigh, got.Result.RiskLevel)
				assert.Equal(t, []string{"Lookalike domain"}, got.Result.Reasons)
				assert.NotNil(t, got.Result.TechnicalDetails.SuspiciousURLs)
			})

			t.Run("missing", func(t *testing.T) {
				_, err := repo.Get(ctx, "nope")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("expired", func(t *testing.T) {
				require.NoError(t, repo.Set(ctx, entry("fp-old", -time.Minute)))

				_, err := repo.Get(ctx, "fp-old")
				assert.ErrorIs(t, err, ErrExpired)

				require.NoError(t, repo.Cleanup(ctx))
				_, err = repo.Get(ctx, "fp-old")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("replace and delete", func(t *testing.T) {
				first := entry("fp-2", time.Hour)
				require.NoError(t, repo.Set(ctx, first))

				second := entry("fp-2", time.Hour)
				second.SenderEmail = "other@example.org"
				require.NoError(t, repo.Set(ctx, second))

				got, err := repo.Get(ctx, "fp-2")
				require.NoError(t, err)
				assert.Equal(t, "other@example.org", got.SenderEmail)

				require.NoError(t, repo.Delete(ctx, "fp-2"))
				_, err = repo.Get(ctx, "fp-2")
				assert.ErrorIs(t, err, ErrNotFound)
			})
		})
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	e := entry("fp", time.Hour)
	require.NoError(t, c.Set(context.Background(), e))
	e.SenderEmail = "changed@example.org"

	got, err := c.Get(context.Background(), "fp")
	require.NoError(t, err)
	assert.Equal(t, "alerts@paypa1.example", got.SenderEmail)
}

func TestMemoryCache_BackgroundCleanup(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 10*time.Millisecond)
	defer c.Stop()

	require.NoError(t, c.Set(context.Background(), entry("fp", -time.Second)))

	assert.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.entries) == 0
	}, time.Second, 10*time.Millisecond)

	c.Stop()
	c.Stop()
}
