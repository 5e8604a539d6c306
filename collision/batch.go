package collision

import (
	"sort"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/scene"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
)

// SortHits orders results by time. At equal time touches come before the
// block so that they are seen before the trace stops.
func SortHits(results []HitResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Time != results[j].Time {
			return results[i].Time < results[j].Time
		}
		return !results[i].BlockingHit && results[j].BlockingHit
	})
}

// ConvertRaycastResults appends the conversion of every raycast hit to
// results and sorts them. Invalid hits are skipped: the returned error then
// wraps ErrInvalidGeometryResult while results still holds every valid hit.
func ConvertRaycastResults(cfg *Config, hits []scene.RaycastHit, q Query, results []HitResult) ([]HitResult, bool, error) {
	return convertHits(cfg, hits, q, results, -1)
}

// AddSweepResults is ConvertRaycastResults for sweeps. Hits further than
// maxDistance are skipped before conversion.
func AddSweepResults(cfg *Config, hits []scene.SweepHit, q Query, results []HitResult, maxDistance float64) ([]HitResult, bool, error) {
	return convertHits(cfg, hits, q, results, maxDistance)
}

func convertHits(cfg *Config, hits []scene.LocationHit, q Query, results []HitResult, maxDistance float64) ([]HitResult, bool, error) {
	results = growHits(results, len(hits))

	blocking := false
	invalid := 0
	for _, hit := range hits {
		if maxDistance >= 0 && hit.Distance > maxDistance {
			continue
		}

		results = append(results, NewHitResult())
		if err := ConvertQueryImpactHit(cfg, hit, q, &results[len(results)-1]); err != nil {
			results = results[:len(results)-1]
			invalid++
			continue
		}
		blocking = blocking || results[len(results)-1].BlockingHit
	}

	SortHits(results)

	if invalid > 0 {
		return results, blocking, errors.Wrapf(ErrInvalidGeometryResult, "%d of %d hits rejected", invalid, len(hits))
	}
	return results, blocking, nil
}

func growHits(results []HitResult, n int) []HitResult {
	if cap(results)-len(results) >= n {
		return results
	}
	grown := make([]HitResult, len(results), len(results)+n)
	copy(grown, results)
	return grown
}

// ConvertOverlapResults appends the overlaps to results, one per component
// and item index. A later overlap replaces an earlier one of the same key
// only if it blocks and the earlier did not. Below the configured threshold
// duplicates are searched linearly, above it through a map; both keep the
// order in which keys were first seen.
func ConvertOverlapResults(cfg *Config, overlaps []scene.OverlapHit, queryFilter actor.FilterData, results []OverlapResult) ([]OverlapResult, bool) {
	threshold := DefaultOverlapDedupThreshold
	if cfg != nil {
		threshold = cfg.OverlapDedupThreshold()
	}

	if len(overlaps) < threshold {
		return convertOverlapsLinear(overlaps, queryFilter, results)
	}
	return convertOverlapsMap(overlaps, queryFilter, results)
}

func convertOverlapsLinear(overlaps []scene.OverlapHit, queryFilter actor.FilterData, results []OverlapResult) ([]OverlapResult, bool) {
	for _, o := range overlaps {
		overlap, ok := ConvertQueryOverlap(o.Shape, queryFilter)
		if !ok {
			continue
		}

		k := -1
		for i := range results {
			if results[i].key() == overlap.key() {
				k = i
				break
			}
		}

		switch {
		case k == -1:
			results = append(results, overlap)
		case overlap.BlockingHit && !results[k].BlockingHit:
			results[k] = overlap
		}
	}
	return results, hasBlockingOverlap(results)
}

func convertOverlapsMap(overlaps []scene.OverlapHit, queryFilter actor.FilterData, results []OverlapResult) ([]OverlapResult, bool) {
	byKey := orderedmap.NewOrderedMap[overlapKey, OverlapResult]()
	for _, existing := range results {
		if _, ok := byKey.Get(existing.key()); !ok {
			byKey.Set(existing.key(), existing)
		}
	}

	for _, o := range overlaps {
		overlap, ok := ConvertQueryOverlap(o.Shape, queryFilter)
		if !ok {
			continue
		}

		previous, seen := byKey.Get(overlap.key())
		if !seen || (overlap.BlockingHit && !previous.BlockingHit) {
			byKey.Set(overlap.key(), overlap)
		}
	}

	results = results[:0]
	for el := byKey.Front(); el != nil; el = el.Next() {
		results = append(results, el.Value)
	}
	return results, hasBlockingOverlap(results)
}

func hasBlockingOverlap(results []OverlapResult) bool {
	for _, r := range results {
		if r.BlockingHit {
			return true
		}
	}
	return false
}
