package analysis

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/consent-crawler/internal/entity"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func artifacts(cond entity.Condition, shots ...image.Image) []entity.Artifact {
	out := make([]entity.Artifact, 0, len(shots))
	for i, s := range shots {
		out = append(out, entity.Artifact{Condition: cond, ActionIndex: i, Screenshot: s})
	}
	return out
}

func TestReduceClickstream(t *testing.T) {
	t.Parallel()

	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	t.Run("identical captures score one", func(t *testing.T) {
		t.Parallel()
		cs := &entity.Clickstream{
			ID: "cs-1",
			Artifacts: map[entity.Condition][]entity.Artifact{
				entity.ConditionBaseline:   artifacts(entity.ConditionBaseline, solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionControl:    artifacts(entity.ConditionControl, solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionAllCookies: artifacts(entity.ConditionAllCookies, solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionNoCookies:  artifacts(entity.ConditionNoCookies, solid(80, 80, red), solid(80, 80, red)),
			},
		}

		r := ReduceClickstream(cs, DefaultOptions())
		assert.Equal(t, "cs-1", r.ClickstreamID)
		assert.Equal(t, 2, r.TotalActions)
		assert.Equal(t, 1.0, r.Similarity)
	})

	t.Run("pairing stops at the shorter condition", func(t *testing.T) {
		t.Parallel()
		// The no-cookies replay diverged after the landing capture.
		cs := &entity.Clickstream{
			ID: "cs-2",
			Artifacts: map[entity.Condition][]entity.Artifact{
				entity.ConditionBaseline:   artifacts(entity.ConditionBaseline, solid(80, 80, red), solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionControl:    artifacts(entity.ConditionControl, solid(80, 80, red), solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionAllCookies: artifacts(entity.ConditionAllCookies, solid(80, 80, red), solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionNoCookies:  artifacts(entity.ConditionNoCookies, solid(80, 80, red)),
			},
		}

		r := ReduceClickstream(cs, DefaultOptions())
		assert.Equal(t, 1, r.TotalActions)
	})

	t.Run("non-comparable index skipped not zeroed", func(t *testing.T) {
		t.Parallel()
		// Index 0 has fully divergent baselines; only index 1 scores.
		cs := &entity.Clickstream{
			ID: "cs-3",
			Artifacts: map[entity.Condition][]entity.Artifact{
				entity.ConditionBaseline:   artifacts(entity.ConditionBaseline, solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionControl:    artifacts(entity.ConditionControl, solid(80, 80, blue), solid(80, 80, red)),
				entity.ConditionAllCookies: artifacts(entity.ConditionAllCookies, solid(80, 80, red), solid(80, 80, red)),
				entity.ConditionNoCookies:  artifacts(entity.ConditionNoCookies, solid(80, 80, red), solid(80, 80, red)),
			},
		}

		r := ReduceClickstream(cs, DefaultOptions())
		assert.Equal(t, 1, r.TotalActions)
		assert.Equal(t, 1.0, r.Similarity)
	})

	t.Run("missing baselines fall back to plain comparison", func(t *testing.T) {
		t.Parallel()
		cs := &entity.Clickstream{
			ID: "cs-4",
			Artifacts: map[entity.Condition][]entity.Artifact{
				entity.ConditionAllCookies: artifacts(entity.ConditionAllCookies, solid(80, 80, red)),
				entity.ConditionNoCookies:  artifacts(entity.ConditionNoCookies, solid(80, 80, red)),
			},
		}

		r := ReduceClickstream(cs, DefaultOptions())
		assert.Equal(t, 1, r.TotalActions)
		assert.Equal(t, 1.0, r.Similarity)
	})

	t.Run("empty clickstream", func(t *testing.T) {
		t.Parallel()
		cs := &entity.Clickstream{ID: "cs-5", Artifacts: map[entity.Condition][]entity.Artifact{}}
		r := ReduceClickstream(cs, DefaultOptions())
		assert.Equal(t, 0, r.TotalActions)
		assert.Equal(t, 0.0, r.Similarity)
	})
}

func TestAggregateWebsite(t *testing.T) {
	t.Parallel()

	t.Run("zero-action clickstreams excluded from the average", func(t *testing.T) {
		t.Parallel()
		results := []entity.ClickstreamResult{
			{ClickstreamID: "a", Similarity: 0.5, TotalActions: 5},
			{ClickstreamID: "b", Similarity: 0, TotalActions: 0},
			{ClickstreamID: "c", Similarity: 0.9, TotalActions: 7},
		}

		agg, ok := AggregateWebsite("example.com", results)
		require.True(t, ok)
		assert.Equal(t, "example.com", agg.Website)
		assert.Equal(t, 12, agg.SampleSize)
		assert.InDelta(t, 0.7, agg.Similarity, 1e-9)
	})

	t.Run("no comparable actions at all", func(t *testing.T) {
		t.Parallel()
		results := []entity.ClickstreamResult{
			{ClickstreamID: "a", TotalActions: 0},
			{ClickstreamID: "b", TotalActions: 0},
		}

		_, ok := AggregateWebsite("example.com", results)
		assert.False(t, ok, "sites with zero comparable actions are excluded, not scored")
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, ok := AggregateWebsite("example.com", nil)
		assert.False(t, ok)
	})
}

func TestSortResults(t *testing.T) {
	t.Parallel()

	results := []entity.AggregateResult{
		{Website: "b.com", SampleSize: 3},
		{Website: "a.com", SampleSize: 9},
		{Website: "c.com", SampleSize: 3},
	}

	SortResults(results)

	want := []string{"a.com", "b.com", "c.com"}
	for i, w := range want {
		if results[i].Website != w {
			t.Errorf("position %d: got %q, want %q (sorted: %+v)", i, results[i].Website, w, results)
		}
	}
}
