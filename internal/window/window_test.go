package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sale struct {
	ID     string
	Region string
	Amount float64
	Known  bool
}

func amount(s sale) (float64, bool) { return s.Amount, s.Known }

func TestGroupSumKeysMatchNonAbsentInput(t *testing.T) {
	sales := []sale{
		{ID: "a", Region: "north", Amount: 10, Known: true},
		{ID: "b", Region: "north", Amount: 5, Known: true},
		{ID: "c", Region: "south", Amount: 7, Known: true},
		{ID: "d", Region: "west", Known: false},
	}

	sums := GroupSum(sales, func(s sale) string { return s.Region }, amount)

	require.Len(t, sums, 2)
	assert.Equal(t, 15.0, sums["north"])
	assert.Equal(t, 7.0, sums["south"])
	_, present := sums["west"]
	assert.False(t, present, "all-absent key must not appear")

	// Sum of group totals equals the ungrouped total.
	total := 0.0
	for _, v := range sums {
		total += v
	}
	assert.Equal(t, 22.0, total)
}

func TestGroupSumEmptyInput(t *testing.T) {
	sums := GroupSum(nil, func(s sale) string { return s.Region }, amount)
	assert.Empty(t, sums)
}

func TestGroupAvgExcludesAbsent(t *testing.T) {
	sales := []sale{
		{ID: "a", Region: "north", Amount: 10, Known: true},
		{ID: "b", Region: "north", Amount: 0, Known: false},
		{ID: "c", Region: "north", Amount: 20, Known: true},
	}

	avgs := GroupAvg(sales, func(s sale) string { return s.Region }, amount)
	// Absent values are excluded from the denominator, not counted as 0.
	assert.Equal(t, 15.0, avgs["north"])
}

func TestRunningSumDeterministicTieBreak(t *testing.T) {
	sales := []sale{
		{ID: "b", Amount: 10},
		{ID: "a", Amount: 10},
		{ID: "c", Amount: 30},
	}

	running := RunningSum(sales,
		func(s sale) float64 { return s.Amount },
		func(s sale) string { return s.ID })

	require.Len(t, running, 3)
	assert.Equal(t, "c", running[0].Record.ID)
	assert.Equal(t, "a", running[1].Record.ID, "ties break by identifier")
	assert.Equal(t, "b", running[2].Record.ID)
	assert.Equal(t, 30.0, running[0].Total)
	assert.Equal(t, 40.0, running[1].Total)
	assert.Equal(t, 50.0, running[2].Total)
}

func TestRankRowNumberSemantics(t *testing.T) {
	sales := []sale{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 10},
		{ID: "c", Amount: 5},
	}

	ranked := Rank(sales,
		func(s sale) float64 { return s.Amount },
		func(s sale) string { return s.ID })

	require.Len(t, ranked, 3)
	// Tied values still get distinct consecutive positions.
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "a", ranked[0].Record.ID)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "b", ranked[1].Record.ID)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestQuantileBucketSizesDifferByAtMostOne(t *testing.T) {
	for _, n := range []int{1, 3, 4, 7, 10, 11, 100} {
		records := make([]sale, n)
		for i := range records {
			records[i] = sale{ID: string(rune('a' + i%26)), Amount: float64(i)}
		}

		buckets := QuantileBucket(records, func(a, b sale) bool { return a.Amount < b.Amount }, 4)
		require.Len(t, buckets, n)

		sizes := make(map[int]int)
		for _, b := range buckets {
			require.GreaterOrEqual(t, b, 1)
			require.LessOrEqual(t, b, 4)
			sizes[b]++
		}

		min, max := n, 0
		for b := 1; b <= 4; b++ {
			if sizes[b] < min {
				min = sizes[b]
			}
			if sizes[b] > max {
				max = sizes[b]
			}
		}
		assert.LessOrEqual(t, max-min, 1, "n=%d", n)
	}
}

func TestQuantileBucketOrdering(t *testing.T) {
	records := []sale{
		{ID: "low", Amount: 1},
		{ID: "high", Amount: 100},
		{ID: "mid-low", Amount: 10},
		{ID: "mid-high", Amount: 50},
	}

	buckets := QuantileBucket(records, func(a, b sale) bool { return a.Amount < b.Amount }, 4)

	assert.Equal(t, []int{1, 4, 2, 3}, buckets)
}

func TestQuantileBucketEmpty(t *testing.T) {
	assert.Empty(t, QuantileBucket(nil, func(a, b sale) bool { return false }, 4))
}

func TestLagFirstElementHasNoPredecessor(t *testing.T) {
	sales := []sale{
		{ID: "feb", Amount: 20},
		{ID: "jan", Amount: 10},
		{ID: "mar", Amount: 30},
	}

	lagged := Lag(sales,
		func(a, b sale) bool { return a.ID < b.ID }, // feb, jan, mar
		func(s sale) float64 { return s.Amount })

	require.Len(t, lagged, 3)
	assert.False(t, lagged[0].HasPrev)
	assert.True(t, lagged[1].HasPrev)
	assert.Equal(t, 20.0, lagged[1].Prev)
	assert.Equal(t, 10.0, lagged[2].Prev)
}

func TestMovingAverageTrailingWindow(t *testing.T) {
	sales := []sale{
		{ID: "1", Amount: 10},
		{ID: "2", Amount: 20},
		{ID: "3", Amount: 30},
		{ID: "4", Amount: 40},
	}

	averaged := MovingAverage(sales,
		func(a, b sale) bool { return a.ID < b.ID },
		func(s sale) float64 { return s.Amount }, 3)

	require.Len(t, averaged, 4)
	assert.InDelta(t, 10.0, averaged[0].Average, 1e-9)
	assert.InDelta(t, 15.0, averaged[1].Average, 1e-9)
	assert.InDelta(t, 20.0, averaged[2].Average, 1e-9)
	assert.InDelta(t, 30.0, averaged[3].Average, 1e-9)
}
