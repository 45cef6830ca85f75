package analyze

import (
	"sort"
	"time"

	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/models"
	"github.com/storelens/storelens/internal/reports"
	"github.com/storelens/storelens/internal/window"
)

const monthLayout = "2006-01"

// MonthlyTrend groups delivered-order revenue by calendar month of purchase
// and derives month-over-month growth plus a 3-month trailing average.
// Growth is absent, not zero, when the previous month is absent or zero.
func MonthlyTrend(m *facts.Model) reports.TrendSection {
	delivered := m.DeliveredOrders()

	revenue := window.GroupSum(delivered, func(o models.Order) string {
		return facts.MonthOf(o.PurchasedAt).Format(monthLayout)
	}, func(o models.Order) (float64, bool) {
		return m.OrderRevenue(o.ID), true
	})
	orders := window.GroupCount(delivered, func(o models.Order) string {
		return facts.MonthOf(o.PurchasedAt).Format(monthLayout)
	})

	type monthRevenue struct {
		Month   string
		Revenue float64
	}
	months := make([]monthRevenue, 0, len(revenue))
	for month, rev := range revenue {
		months = append(months, monthRevenue{Month: month, Revenue: rev})
	}

	byMonth := func(a, b monthRevenue) bool { return a.Month < b.Month }
	value := func(r monthRevenue) float64 { return r.Revenue }
	lagged := window.Lag(months, byMonth, value)
	averaged := window.MovingAverage(months, byMonth, value, 3)

	rows := make([]reports.TrendRow, 0, len(lagged))
	for i, l := range lagged {
		row := reports.TrendRow{
			Month:      l.Record.Month,
			Orders:     orders[l.Record.Month],
			Revenue:    reports.Round2(l.Value),
			MovingAvg3: reports.Round2(averaged[i].Average),
		}
		// Growth needs the previous calendar month, not just the previous
		// row: a gap month leaves growth absent, never computed across it.
		if l.HasPrev && l.Prev != 0 && lagged[i-1].Record.Month == previousMonth(l.Record.Month) {
			growth := (l.Value - l.Prev) / l.Prev * 100
			row.GrowthPct = reports.Round2Ptr(&growth)
		}
		rows = append(rows, row)
	}
	return reports.TrendSection{Rows: rows}
}

func previousMonth(month string) string {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return ""
	}
	return t.AddDate(0, -1, 0).Format(monthLayout)
}

// cohortOffsets is the retention horizon: offsets 0..3 months from the
// cohort month.
const cohortOffsets = 4

// CohortRetention assigns every customer to the calendar month of their
// first delivered order and counts, per cohort and offset, the distinct
// customers with at least one delivered order in that month. Cohorts before
// the configured floor are omitted and counted for the audit, to keep the
// dataset's partial leading edge out of the matrix.
func CohortRetention(m *facts.Model, floor time.Time) (reports.CohortSection, int) {
	firstMonth := make(map[string]time.Time)
	activeMonths := make(map[string]map[time.Time]bool)

	for _, o := range m.DeliveredOrders() {
		id := m.UniqueCustomer(o.CustomerID)
		month := facts.MonthOf(o.PurchasedAt)
		if first, ok := firstMonth[id]; !ok || month.Before(first) {
			firstMonth[id] = month
		}
		if activeMonths[id] == nil {
			activeMonths[id] = make(map[time.Time]bool)
		}
		activeMonths[id][month] = true
	}

	cohortCounts := make(map[time.Time]*[cohortOffsets]int)
	for id, cohort := range firstMonth {
		counts, ok := cohortCounts[cohort]
		if !ok {
			counts = &[cohortOffsets]int{}
			cohortCounts[cohort] = counts
		}
		for k := 0; k < cohortOffsets; k++ {
			if activeMonths[id][cohort.AddDate(0, k, 0)] {
				counts[k]++
			}
		}
	}

	cohorts := make([]time.Time, 0, len(cohortCounts))
	for c := range cohortCounts {
		cohorts = append(cohorts, c)
	}
	sort.Slice(cohorts, func(a, b int) bool { return cohorts[a].Before(cohorts[b]) })

	rows := make([]reports.CohortRow, 0, len(cohorts))
	omitted := 0
	for _, cohort := range cohorts {
		if cohort.Before(floor) {
			omitted++
			continue
		}
		counts := cohortCounts[cohort]
		row := reports.CohortRow{
			CohortMonth: cohort.Format(monthLayout),
			MonthCounts: *counts,
		}
		if counts[0] > 0 {
			retention := float64(counts[1]) / float64(counts[0]) * 100
			row.RetentionAt1 = reports.Round2Ptr(&retention)
		}
		rows = append(rows, row)
	}
	return reports.CohortSection{Rows: rows}, omitted
}
