// Package window provides the generic aggregation primitives shared by every
// analysis engine: grouped sums and averages, deterministic ranking, running
// totals, ntile bucketing, lag and trailing moving averages. The primitives
// carry no business semantics and are pure over their inputs.
package window

import (
	"sort"
)

// GroupSum groups records by key and sums their values. Records whose value
// is absent contribute nothing; keys whose records are all absent do not
// appear in the output.
func GroupSum[T any, K comparable](records []T, keyFn func(T) K, valueFn func(T) (float64, bool)) map[K]float64 {
	out := make(map[K]float64)
	for _, r := range records {
		v, ok := valueFn(r)
		if !ok {
			continue
		}
		out[keyFn(r)] += v
	}
	return out
}

// GroupAvg groups records by key and averages their values, excluding absent
// values from both numerator and denominator.
func GroupAvg[T any, K comparable](records []T, keyFn func(T) K, valueFn func(T) (float64, bool)) map[K]float64 {
	sums := make(map[K]float64)
	counts := make(map[K]int)
	for _, r := range records {
		v, ok := valueFn(r)
		if !ok {
			continue
		}
		k := keyFn(r)
		sums[k] += v
		counts[k]++
	}
	out := make(map[K]float64, len(sums))
	for k, s := range sums {
		out[k] = s / float64(counts[k])
	}
	return out
}

// GroupCount counts records per key.
func GroupCount[T any, K comparable](records []T, keyFn func(T) K) map[K]int {
	out := make(map[K]int)
	for _, r := range records {
		out[keyFn(r)]++
	}
	return out
}

// Cumulative pairs a record with the running total up to and including it.
type Cumulative[T any] struct {
	Record T
	Value  float64
	Total  float64
}

// RunningSum orders records by value descending, ties broken by tieKey
// ascending so the ordering is reproducible, and returns each record with
// its cumulative total.
func RunningSum[T any](records []T, valueFn func(T) float64, tieKey func(T) string) []Cumulative[T] {
	sorted := sortDescending(records, valueFn, tieKey)
	out := make([]Cumulative[T], 0, len(sorted))
	total := 0.0
	for _, r := range sorted {
		v := valueFn(r)
		total += v
		out = append(out, Cumulative[T]{Record: r, Value: v, Total: total})
	}
	return out
}

// Ranked pairs a record with its 1-indexed position in the deterministic
// descending order (row-number semantics: tied values still receive distinct
// consecutive positions via the tie key).
type Ranked[T any] struct {
	Record T
	Rank   int
}

// Rank orders records by value descending with the tieKey breaking ties and
// returns 1-indexed positions.
func Rank[T any](records []T, valueFn func(T) float64, tieKey func(T) string) []Ranked[T] {
	sorted := sortDescending(records, valueFn, tieKey)
	out := make([]Ranked[T], 0, len(sorted))
	for i, r := range sorted {
		out = append(out, Ranked[T]{Record: r, Rank: i + 1})
	}
	return out
}

// QuantileBucket partitions records into buckets of near-equal size and
// returns a bucket index in [1, buckets] for each input record, aligned with
// the input slice. Records are ordered by less; the first bucket holds the
// records that sort first. When the count does not divide evenly the
// remainder goes to the leading buckets, matching NTILE. Buckets must be
// positive; empty input yields an empty result.
func QuantileBucket[T any](records []T, less func(a, b T) bool, buckets int) []int {
	n := len(records)
	if n == 0 || buckets < 1 {
		return []int{}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(records[idx[a]], records[idx[b]])
	})

	out := make([]int, n)
	base := n / buckets
	remainder := n % buckets
	pos := 0
	for b := 1; b <= buckets; b++ {
		size := base
		if b <= remainder {
			size++
		}
		for i := 0; i < size && pos < n; i++ {
			out[idx[pos]] = b
			pos++
		}
	}
	return out
}

// Lagged pairs a record with its predecessor's value in sort order. The
// first record has no predecessor.
type Lagged[T any] struct {
	Record  T
	Value   float64
	Prev    float64
	HasPrev bool
}

// Lag orders records by less and attaches each record's previous value.
func Lag[T any](records []T, less func(a, b T) bool, valueFn func(T) float64) []Lagged[T] {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(a, b int) bool { return less(sorted[a], sorted[b]) })

	out := make([]Lagged[T], 0, len(sorted))
	for i, r := range sorted {
		l := Lagged[T]{Record: r, Value: valueFn(r)}
		if i > 0 {
			l.Prev = valueFn(sorted[i-1])
			l.HasPrev = true
		}
		out = append(out, l)
	}
	return out
}

// Averaged pairs a record with the trailing moving average ending at it.
type Averaged[T any] struct {
	Record  T
	Value   float64
	Average float64
}

// MovingAverage orders records by less and computes the average over the
// trailing window elements including the current one. Leading records use
// however many elements exist so far.
func MovingAverage[T any](records []T, less func(a, b T) bool, valueFn func(T) float64, windowSize int) []Averaged[T] {
	if windowSize < 1 {
		windowSize = 1
	}
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(a, b int) bool { return less(sorted[a], sorted[b]) })

	out := make([]Averaged[T], 0, len(sorted))
	for i, r := range sorted {
		start := i - windowSize + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += valueFn(sorted[j])
		}
		out = append(out, Averaged[T]{
			Record:  r,
			Value:   valueFn(r),
			Average: sum / float64(i-start+1),
		})
	}
	return out
}

func sortDescending[T any](records []T, valueFn func(T) float64, tieKey func(T) string) []T {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(a, b int) bool {
		va, vb := valueFn(sorted[a]), valueFn(sorted[b])
		if va != vb {
			return va > vb
		}
		return tieKey(sorted[a]) < tieKey(sorted[b])
	})
	return sorted
}
