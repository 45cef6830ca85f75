package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyTrendGrowthAndGaps(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	f.addCustomer("c1", "u1", "SP")
	f.addDelivered("c1", "p1", 100, 0, "2018-01-10")
	f.addDelivered("c1", "p1", 150, 0, "2018-02-10")
	f.addDelivered("c1", "p1", 200, 0, "2018-04-10") // March has no orders

	section := MonthlyTrend(f.model(t))

	require.Len(t, section.Rows, 3)

	jan := section.Rows[0]
	assert.Equal(t, "2018-01", jan.Month)
	assert.Equal(t, 1, jan.Orders)
	assert.Equal(t, 100.0, jan.Revenue)
	assert.Nil(t, jan.GrowthPct, "first month has no baseline")
	assert.Equal(t, 100.0, jan.MovingAvg3)

	feb := section.Rows[1]
	assert.Equal(t, "2018-02", feb.Month)
	require.NotNil(t, feb.GrowthPct)
	assert.Equal(t, 50.0, *feb.GrowthPct)
	assert.Equal(t, 125.0, feb.MovingAvg3)

	apr := section.Rows[2]
	assert.Equal(t, "2018-04", apr.Month)
	assert.Nil(t, apr.GrowthPct, "growth is never computed across a gap month")
	assert.Equal(t, 150.0, apr.MovingAvg3)
}

func TestMonthlyTrendRevenueIncludesFreight(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	f.addCustomer("c1", "u1", "SP")
	f.addDelivered("c1", "p1", 100, 25, "2018-01-10")

	section := MonthlyTrend(f.model(t))

	require.Len(t, section.Rows, 1)
	assert.Equal(t, 125.0, section.Rows[0].Revenue)
}

func TestCohortRetention(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	f.addCustomer("c1", "u1", "SP")
	f.addCustomer("c2", "u2", "SP")
	f.addDelivered("c1", "p1", 100, 0, "2018-01-05")
	f.addDelivered("c1", "p1", 100, 0, "2018-02-10")
	f.addDelivered("c2", "p1", 100, 0, "2018-01-20")

	section, omitted := CohortRetention(f.model(t), at("2017-01-01"))

	assert.Zero(t, omitted)
	require.Len(t, section.Rows, 1)
	row := section.Rows[0]
	assert.Equal(t, "2018-01", row.CohortMonth)
	assert.Equal(t, [4]int{2, 1, 0, 0}, row.MonthCounts)
	require.NotNil(t, row.RetentionAt1)
	assert.Equal(t, 50.0, *row.RetentionAt1)
}

func TestCohortRetentionFloorOmitsEarlyCohorts(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	f.addCustomer("c1", "u1", "SP")
	f.addCustomer("c2", "u2", "SP")
	f.addDelivered("c1", "p1", 100, 0, "2016-12-15")
	f.addDelivered("c2", "p1", 100, 0, "2018-01-20")

	section, omitted := CohortRetention(f.model(t), at("2017-01-01"))

	assert.Equal(t, 1, omitted, "cohorts before the floor are counted, not reported")
	require.Len(t, section.Rows, 1)
	assert.Equal(t, "2018-01", section.Rows[0].CohortMonth)
}

func TestCohortRetentionCountsPeopleNotAccounts(t *testing.T) {
	f := newFixture()
	f.addCategory("toys", "Toys")
	f.addProduct("p1", "toys")
	// Two order-time accounts, one person.
	f.addCustomer("c1", "u1", "SP")
	f.addCustomer("c1-bis", "u1", "SP")
	f.addDelivered("c1", "p1", 100, 0, "2018-01-05")
	f.addDelivered("c1-bis", "p1", 100, 0, "2018-01-25")

	section, _ := CohortRetention(f.model(t), at("2017-01-01"))

	require.Len(t, section.Rows, 1)
	assert.Equal(t, [4]int{1, 0, 0, 0}, section.Rows[0].MonthCounts)
}
