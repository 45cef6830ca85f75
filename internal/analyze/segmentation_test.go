package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentCustomersSingleCustomer(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	f.addCustomer("c1", "u1", "SP")
	f.addDelivered("c1", "p1", 100, 10, "2018-01-01")
	f.addDelivered("c1", "p1", 50, 10, "2018-02-01")
	f.addDelivered("c1", "p1", 200, 10, "2018-03-01")

	section := SegmentCustomers(f.model(t), testEngineConfig(), at("2018-06-09"))

	require.Len(t, section.Customers, 1)
	c := section.Customers[0]
	assert.Equal(t, "u1", c.CustomerID)
	assert.Equal(t, 3, c.Frequency)
	assert.Equal(t, 370.0, c.Monetary, "monetary includes freight")
	assert.Equal(t, 100, c.RecencyDays, "recency counts from the last purchase")
	assert.Equal(t, 1, c.RecencyScore)
	assert.Equal(t, 1, c.FrequencyScore)
	assert.Equal(t, 1, c.MonetaryScore)
	assert.Equal(t, SegmentLost, c.Segment)
	assert.Equal(t, TierRepeat, c.Tier)
	assert.Equal(t, ChurnMediumRisk, c.ChurnBand)

	require.Len(t, section.Segments, 1)
	seg := section.Segments[0]
	assert.Equal(t, SegmentLost, seg.Segment)
	assert.Equal(t, 1, seg.Customers)
	assert.Equal(t, 370.0, seg.TotalValue)
	assert.Equal(t, 37.0, seg.PotentialImpact, "retention multiplier applies to segment value")

	require.Len(t, section.ChurnBands, 1)
	band := section.ChurnBands[0]
	assert.Equal(t, ChurnMediumRisk, band.Band)
	assert.Equal(t, 111.0, band.PotentialLoss, "churn loss multiplier applies to band value")

	require.Len(t, section.Tiers, 1)
	assert.Equal(t, TierRepeat, section.Tiers[0].Tier)
}

func TestSegmentCustomersNeverPurchasedReportedSeparately(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	f.addCustomer("c1", "u1", "SP")
	f.addCustomer("c2", "u2", "RJ")
	f.addDelivered("c1", "p1", 100, 0, "2018-05-01")

	section := SegmentCustomers(f.model(t), testEngineConfig(), at("2018-06-01"))

	require.Len(t, section.Customers, 1)
	assert.Equal(t, "u1", section.Customers[0].CustomerID)
	assert.Equal(t, 1, section.NeverPurchased, "no delivered order means no risk band")
	for _, band := range section.ChurnBands {
		assert.Equal(t, 1, band.Customers)
	}
}

func TestSegmentCustomersDeterministicOnTies(t *testing.T) {
	build := func() *fixture {
		f := newFixture()
		f.addCategory("toys", "Toys")
		f.addProduct("p1", "toys")
		f.addCustomer("c1", "u-a", "SP")
		f.addCustomer("c2", "u-b", "SP")
		f.addDelivered("c1", "p1", 100, 0, "2018-05-01")
		f.addDelivered("c2", "p1", 100, 0, "2018-05-01")
		return f
	}

	first := SegmentCustomers(build().model(t), testEngineConfig(), at("2018-06-01"))
	second := SegmentCustomers(build().model(t), testEngineConfig(), at("2018-06-01"))

	assert.Equal(t, first, second, "identical inputs produce identical assignments")
	require.Len(t, first.Customers, 2)
	assert.Equal(t, "u-a", first.Customers[0].CustomerID)
	assert.Equal(t, "u-b", first.Customers[1].CustomerID)
}

func TestRFMSegmentTable(t *testing.T) {
	cases := []struct {
		r, f    int
		segment string
	}{
		{5, 5, SegmentChampions},
		{4, 4, SegmentChampions},
		{4, 3, SegmentLoyal},
		{3, 3, SegmentLoyal},
		{3, 2, SegmentPotentialLoyalist},
		{5, 1, SegmentPotentialLoyalist}, // recency alone is not Champions
		{2, 5, SegmentAtRisk},
		{1, 4, SegmentAtRisk},
		{2, 2, SegmentLost},
		{1, 1, SegmentLost},
		{2, 3, SegmentOthers},
	}
	for _, tc := range cases {
		got := rfmSegment(tc.r, tc.f)
		assert.Equal(t, tc.segment, got, "r=%d f=%d", tc.r, tc.f)
	}
}

func TestLTVTierThresholds(t *testing.T) {
	assert.Equal(t, TierVIP, ltvTier(5, 1000))
	assert.Equal(t, TierHighValue, ltvTier(5, 999.99), "VIP needs both gates")
	assert.Equal(t, TierHighValue, ltvTier(3, 500))
	assert.Equal(t, TierRepeat, ltvTier(3, 499.99))
	assert.Equal(t, TierRepeat, ltvTier(2, 10))
	assert.Equal(t, TierOneTime, ltvTier(1, 5000), "value alone never promotes a one-time buyer")
}

func TestChurnBandBoundaries(t *testing.T) {
	assert.Equal(t, ChurnHighRisk, churnBand(181))
	assert.Equal(t, ChurnMediumRisk, churnBand(180))
	assert.Equal(t, ChurnMediumRisk, churnBand(91))
	assert.Equal(t, ChurnLowRisk, churnBand(90))
	assert.Equal(t, ChurnLowRisk, churnBand(61))
	assert.Equal(t, ChurnActive, churnBand(60))
	assert.Equal(t, ChurnActive, churnBand(0))
}
