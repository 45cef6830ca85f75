package analyze

import (
	"sort"
	"time"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/reports"
	"github.com/storelens/storelens/internal/window"
)

// RFM segment labels, evaluated top to bottom, first match wins.
const (
	SegmentChampions         = "Champions"
	SegmentLoyal             = "Loyal"
	SegmentPotentialLoyalist = "Potential Loyalist"
	SegmentAtRisk            = "At Risk"
	SegmentLost              = "Lost"
	SegmentOthers            = "Others"
)

// Lifetime-value tiers.
const (
	TierVIP       = "VIP"
	TierHighValue = "High Value"
	TierRepeat    = "Repeat"
	TierOneTime   = "One-time"
)

// Churn-risk bands.
const (
	ChurnHighRisk   = "High Risk"
	ChurnMediumRisk = "Medium Risk"
	ChurnLowRisk    = "Low Risk"
	ChurnActive     = "Active"
)

var segmentOrder = []string{SegmentChampions, SegmentLoyal, SegmentPotentialLoyalist, SegmentAtRisk, SegmentLost, SegmentOthers}
var tierOrder = []string{TierVIP, TierHighValue, TierRepeat, TierOneTime}
var churnOrder = []string{ChurnHighRisk, ChurnMediumRisk, ChurnLowRisk, ChurnActive}

// customerStats is the per-person base every classification scheme reads:
// delivered orders only, keyed by the unique-person identifier.
type customerStats struct {
	ID           string
	LastPurchase time.Time
	RecencyDays  int
	Frequency    int
	Monetary     float64
}

// SegmentCustomers computes RFM scores, lifetime-value tiers and churn-risk
// bands for every customer with at least one delivered order. Customers who
// never completed a delivered order carry no last-purchase date and are
// reported separately, never as a risk band.
func SegmentCustomers(m *facts.Model, cfg config.EngineConfig, asOf time.Time) reports.SegmentationSection {
	stats := collectCustomerStats(m, asOf)

	recencyScores := window.QuantileBucket(stats, func(a, b customerStats) bool {
		// Descending recency: the stalest customers land in bucket 1, the
		// most recent in bucket 5, aligning high score = good.
		if a.RecencyDays != b.RecencyDays {
			return a.RecencyDays > b.RecencyDays
		}
		return a.ID < b.ID
	}, 5)
	frequencyScores := window.QuantileBucket(stats, func(a, b customerStats) bool {
		if a.Frequency != b.Frequency {
			return a.Frequency < b.Frequency
		}
		return a.ID < b.ID
	}, 5)
	monetaryScores := window.QuantileBucket(stats, func(a, b customerStats) bool {
		if a.Monetary != b.Monetary {
			return a.Monetary < b.Monetary
		}
		return a.ID < b.ID
	}, 5)

	customers := make([]reports.CustomerSegment, 0, len(stats))
	for i, s := range stats {
		r, f, mo := recencyScores[i], frequencyScores[i], monetaryScores[i]
		customers = append(customers, reports.CustomerSegment{
			CustomerID:     s.ID,
			RecencyDays:    s.RecencyDays,
			Frequency:      s.Frequency,
			Monetary:       reports.Round2(s.Monetary),
			RecencyScore:   r,
			FrequencyScore: f,
			MonetaryScore:  mo,
			Segment:        rfmSegment(r, f),
			Tier:           ltvTier(s.Frequency, s.Monetary),
			ChurnBand:      churnBand(s.RecencyDays),
		})
	}
	sort.Slice(customers, func(a, b int) bool { return customers[a].CustomerID < customers[b].CustomerID })

	return reports.SegmentationSection{
		Customers:      customers,
		Segments:       segmentRollups(customers, cfg.RetentionMultiplier),
		Tiers:          tierRollups(customers),
		ChurnBands:     churnRollups(customers, cfg.ChurnLossMultiplier),
		NeverPurchased: neverPurchased(m, stats),
	}
}

func collectCustomerStats(m *facts.Model, asOf time.Time) []customerStats {
	byCustomer := make(map[string]*customerStats)
	for _, o := range m.DeliveredOrders() {
		id := m.UniqueCustomer(o.CustomerID)
		s, ok := byCustomer[id]
		if !ok {
			s = &customerStats{ID: id, LastPurchase: o.PurchasedAt}
			byCustomer[id] = s
		}
		if o.PurchasedAt.After(s.LastPurchase) {
			s.LastPurchase = o.PurchasedAt
		}
		s.Frequency++
		s.Monetary += m.OrderRevenue(o.ID)
	}

	stats := make([]customerStats, 0, len(byCustomer))
	for _, s := range byCustomer {
		s.RecencyDays = int(asOf.Sub(s.LastPurchase).Hours() / 24)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(a, b int) bool { return stats[a].ID < stats[b].ID })
	return stats
}

// rfmSegment maps (recency, frequency) scores to a segment. Table order
// matters: first match wins.
func rfmSegment(r, f int) string {
	switch {
	case r >= 4 && f >= 4:
		return SegmentChampions
	case r >= 3 && f >= 3:
		return SegmentLoyal
	case r >= 3 && f <= 2:
		return SegmentPotentialLoyalist
	case r <= 2 && f >= 4:
		return SegmentAtRisk
	case r <= 2 && f <= 2:
		return SegmentLost
	default:
		return SegmentOthers
	}
}

// ltvTier classifies by absolute order count and lifetime value.
func ltvTier(orders int, value float64) string {
	switch {
	case orders >= 5 && value >= 1000:
		return TierVIP
	case orders >= 3 && value >= 500:
		return TierHighValue
	case orders >= 2:
		return TierRepeat
	default:
		return TierOneTime
	}
}

// churnBand classifies by days since the last delivered purchase.
func churnBand(days int) string {
	switch {
	case days > 180:
		return ChurnHighRisk
	case days > 90:
		return ChurnMediumRisk
	case days > 60:
		return ChurnLowRisk
	default:
		return ChurnActive
	}
}

func segmentRollups(customers []reports.CustomerSegment, retentionMultiplier float64) []reports.SegmentRollup {
	grouped := make(map[string][]reports.CustomerSegment)
	for _, c := range customers {
		grouped[c.Segment] = append(grouped[c.Segment], c)
	}

	rollups := make([]reports.SegmentRollup, 0, len(grouped))
	for _, segment := range segmentOrder {
		members := grouped[segment]
		if len(members) == 0 {
			continue
		}
		total, orders, days := 0.0, 0, 0
		for _, c := range members {
			total += c.Monetary
			orders += c.Frequency
			days += c.RecencyDays
		}
		n := float64(len(members))
		rollups = append(rollups, reports.SegmentRollup{
			Segment:         segment,
			Customers:       len(members),
			TotalValue:      reports.Round2(total),
			AvgValue:        reports.Round2(total / n),
			AvgOrders:       reports.Round2(float64(orders) / n),
			AvgDaysInactive: reports.Round2(float64(days) / n),
			PotentialImpact: reports.Round2(total * retentionMultiplier),
		})
	}
	return rollups
}

func tierRollups(customers []reports.CustomerSegment) []reports.TierRollup {
	grouped := make(map[string][]reports.CustomerSegment)
	for _, c := range customers {
		grouped[c.Tier] = append(grouped[c.Tier], c)
	}

	rollups := make([]reports.TierRollup, 0, len(grouped))
	for _, tier := range tierOrder {
		members := grouped[tier]
		if len(members) == 0 {
			continue
		}
		total, orders := 0.0, 0
		for _, c := range members {
			total += c.Monetary
			orders += c.Frequency
		}
		n := float64(len(members))
		rollups = append(rollups, reports.TierRollup{
			Tier:       tier,
			Customers:  len(members),
			TotalValue: reports.Round2(total),
			AvgValue:   reports.Round2(total / n),
			AvgOrders:  reports.Round2(float64(orders) / n),
		})
	}
	return rollups
}

func churnRollups(customers []reports.CustomerSegment, lossMultiplier float64) []reports.ChurnRollup {
	grouped := make(map[string][]reports.CustomerSegment)
	for _, c := range customers {
		grouped[c.ChurnBand] = append(grouped[c.ChurnBand], c)
	}

	rollups := make([]reports.ChurnRollup, 0, len(grouped))
	for _, band := range churnOrder {
		members := grouped[band]
		if len(members) == 0 {
			continue
		}
		total, days := 0.0, 0
		for _, c := range members {
			total += c.Monetary
			days += c.RecencyDays
		}
		loss := 0.0
		if band != ChurnActive {
			loss = total * lossMultiplier
		}
		rollups = append(rollups, reports.ChurnRollup{
			Band:            band,
			Customers:       len(members),
			AvgDaysInactive: reports.Round2(float64(days) / float64(len(members))),
			TotalValue:      reports.Round2(total),
			PotentialLoss:   reports.Round2(loss),
		})
	}
	return rollups
}

func neverPurchased(m *facts.Model, stats []customerStats) int {
	withDelivered := make(map[string]bool, len(stats))
	for _, s := range stats {
		withDelivered[s.ID] = true
	}
	all := make(map[string]bool)
	for id := range m.Customers {
		all[m.UniqueCustomer(id)] = true
	}
	count := 0
	for id := range all {
		if !withDelivered[id] {
			count++
		}
	}
	return count
}
