// Package analysis reduces per-action similarity scores into per-clickstream
// and per-website verdicts. Everything here is a pure function over
// immutable captured artifacts.
package analysis

import (
	"sort"

	"github.com/user/consent-crawler/internal/entity"
	"github.com/user/consent-crawler/internal/shingle"
)

// Options tunes the reduction.
type Options struct {
	// BlockSize is the shingle edge length.
	BlockSize int
	// NoiseControl masks out blocks where the two baseline replays already
	// differ before scoring the experimental pair.
	NoiseControl bool
}

// DefaultOptions returns the stock reduction settings.
func DefaultOptions() Options {
	return Options{BlockSize: shingle.DefaultBlockSize, NoiseControl: true}
}

// ReduceClickstream walks the paired experimental (no-cookies) and
// counterfactual (all-cookies) artifacts index by index, stopping at the
// first index missing on either side, and averages the per-action
// similarity. Indices whose comparison is not possible (empty overlap,
// fully divergent baselines) are skipped, never scored as zero.
// TotalActions counts only the indices that actually produced a score.
func ReduceClickstream(cs *entity.Clickstream, opts Options) entity.ClickstreamResult {
	result := entity.ClickstreamResult{ClickstreamID: cs.ID}

	experimental := cs.Artifacts[entity.ConditionNoCookies]
	counterfactual := cs.Artifacts[entity.ConditionAllCookies]
	baseline := cs.Artifacts[entity.ConditionBaseline]
	control := cs.Artifacts[entity.ConditionControl]

	paired := len(experimental)
	if len(counterfactual) < paired {
		paired = len(counterfactual)
	}

	sum := 0.0
	for i := 0; i < paired; i++ {
		var (
			score float64
			ok    bool
		)
		if opts.NoiseControl && i < len(baseline) && i < len(control) {
			score, ok = shingle.SimilarityWithControl(
				baseline[i].Screenshot,
				control[i].Screenshot,
				experimental[i].Screenshot,
				counterfactual[i].Screenshot,
				opts.BlockSize,
			)
		} else {
			score, ok = shingle.Similarity(experimental[i].Screenshot, counterfactual[i].Screenshot, opts.BlockSize)
		}
		if !ok {
			continue
		}
		sum += score
		result.TotalActions++
	}

	if result.TotalActions > 0 {
		result.Similarity = sum / float64(result.TotalActions)
	}
	return result
}

// AggregateWebsite averages clickstream similarities into the website
// verdict. Clickstreams with zero comparable actions are excluded from the
// average, not treated as zero; SampleSize is the sum of comparable actions
// over all clickstreams. The second return is false for websites with no
// comparable actions at all — such sites are omitted from output entirely.
func AggregateWebsite(website string, results []entity.ClickstreamResult) (entity.AggregateResult, bool) {
	agg := entity.AggregateResult{Website: website}

	sum := 0.0
	contributing := 0
	for _, r := range results {
		agg.SampleSize += r.TotalActions
		if r.TotalActions == 0 {
			continue
		}
		sum += r.Similarity
		contributing++
	}

	if agg.SampleSize == 0 || contributing == 0 {
		return agg, false
	}
	agg.Similarity = sum / float64(contributing)
	return agg, true
}

// SortResults orders aggregate rows descending by sample size, the
// confidence key; ties break on website name for stable output.
func SortResults(results []entity.AggregateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SampleSize != results[j].SampleSize {
			return results[i].SampleSize > results[j].SampleSize
		}
		return results[i].Website < results[j].Website
	})
}
