package analyze

import (
	"sort"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/reports"
	"github.com/storelens/storelens/internal/window"
)

// Upsell gates for the pricing opportunity scan: cheapest-quartile products
// must carry at least this rating and review volume before they count.
const (
	minUpsellRating  = 4.5
	minUpsellReviews = 10
)

// Market classifications, evaluated top to bottom, first match wins.
const (
	MarketHighGrowth  = "High Growth Potential"
	MarketPremium     = "Premium Market"
	MarketExpansionTarget = "Expansion Target"
	MarketEstablished = "Established Market"
)

// ParetoCutoff ranks products by delivered-order revenue and returns the
// minimal top-ranked prefix whose cumulative revenue reaches the configured
// share of the total.
func ParetoCutoff(m *facts.Model, threshold float64) reports.ParetoSection {
	type productRevenue struct {
		ID      string
		Revenue float64
	}

	totals := make(map[string]float64)
	for _, o := range m.DeliveredOrders() {
		for _, it := range m.ItemsByOrder[o.ID] {
			totals[it.ProductID] += it.Price + it.Freight
		}
	}

	ranked := make([]productRevenue, 0, len(totals))
	for id, rev := range totals {
		ranked = append(ranked, productRevenue{ID: id, Revenue: rev})
	}

	running := window.RunningSum(ranked,
		func(p productRevenue) float64 { return p.Revenue },
		func(p productRevenue) string { return p.ID })

	section := reports.ParetoSection{
		Threshold:   threshold,
		CatalogSize: len(m.Products),
	}
	if len(running) == 0 {
		return section
	}

	total := running[len(running)-1].Total
	target := total * threshold
	cut := len(running)
	for i, r := range running {
		if r.Total >= target {
			cut = i + 1
			break
		}
	}

	products := make([]reports.ParetoProduct, 0, cut)
	for i := 0; i < cut; i++ {
		r := running[i]
		p := r.Record
		category := ""
		if c, ok := m.CategoryOf(p.ID); ok {
			category = c.Name
		}
		products = append(products, reports.ParetoProduct{
			ProductID:         p.ID,
			Category:          category,
			Rank:              i + 1,
			Revenue:           reports.Round2(p.Revenue),
			CumulativeRevenue: reports.Round2(r.Total),
		})
	}

	section.TopProducts = cut
	section.TotalRevenue = reports.Round2(total)
	section.RevenueSharePct = reports.Round2(running[cut-1].Total / total * 100)
	if section.CatalogSize > 0 {
		section.CatalogSharePct = reports.Round2(float64(cut) / float64(section.CatalogSize) * 100)
	}
	section.Products = products
	return section
}

// pricingProduct is the per-product base for the upsell scan: delivered
// orders only, review stats absent when the orders carry no review.
type pricingProduct struct {
	ID          string
	Category    string
	Orders      int
	AvgPrice    float64
	Revenue     float64
	ReviewCount int
	AvgRating   float64
}

// PricingOpportunity flags cheapest-quartile, highly rated products as
// upsell candidates and aggregates them per category. Categories below the
// minimum sample size are omitted and counted, not reported with thin data.
func PricingOpportunity(m *facts.Model, cfg config.EngineConfig) (reports.PricingSection, int) {
	products := collectPricingProducts(m, cfg.MinOrdersForPricing)

	byCategory := make(map[string][]pricingProduct)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	candidates := make(map[string][]pricingProduct)
	for category, members := range byCategory {
		quartiles := window.QuantileBucket(members, func(a, b pricingProduct) bool {
			if a.AvgPrice != b.AvgPrice {
				return a.AvgPrice < b.AvgPrice
			}
			return a.ID < b.ID
		}, 4)
		for i, p := range members {
			if quartiles[i] == 1 && p.ReviewCount >= minUpsellReviews && p.AvgRating >= minUpsellRating {
				candidates[category] = append(candidates[category], p)
			}
		}
	}

	rows := make([]reports.PricingRow, 0, len(candidates))
	omitted := 0
	for category, members := range candidates {
		if len(members) < cfg.MinCategorySampleSize {
			omitted++
			continue
		}
		price, rating, revenue := 0.0, 0.0, 0.0
		for _, p := range members {
			price += p.AvgPrice
			rating += p.AvgRating
			revenue += p.Revenue
		}
		n := float64(len(members))
		display := category
		if c, ok := m.Categories[category]; ok && c.DisplayName != "" {
			display = c.DisplayName
		}
		rows = append(rows, reports.PricingRow{
			Category:        category,
			DisplayName:     display,
			Products:        len(members),
			AvgPrice:        reports.Round2(price / n),
			AvgRating:       reports.Round2(rating / n),
			CurrentRevenue:  reports.Round2(revenue),
			ProjectedUplift: reports.Round2(revenue * cfg.PriceIncreasePct),
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].ProjectedUplift != rows[b].ProjectedUplift {
			return rows[a].ProjectedUplift > rows[b].ProjectedUplift
		}
		return rows[a].Category < rows[b].Category
	})
	return reports.PricingSection{Rows: rows}, omitted
}

func collectPricingProducts(m *facts.Model, minOrders int) []pricingProduct {
	type acc struct {
		orders      map[string]bool
		priceSum    float64
		lines       int
		revenue     float64
		reviewSum   int
		reviewCount int
	}
	byProduct := make(map[string]*acc)

	for _, o := range m.DeliveredOrders() {
		scores := m.ReviewScores(o.ID)
		for _, it := range m.ItemsByOrder[o.ID] {
			a, ok := byProduct[it.ProductID]
			if !ok {
				a = &acc{orders: make(map[string]bool)}
				byProduct[it.ProductID] = a
			}
			if !a.orders[o.ID] {
				a.orders[o.ID] = true
				// Reviews attach per order, not per line.
				for _, s := range scores {
					a.reviewSum += s
					a.reviewCount++
				}
			}
			a.priceSum += it.Price
			a.revenue += it.Price
			a.lines++
		}
	}

	products := make([]pricingProduct, 0, len(byProduct))
	for id, a := range byProduct {
		if len(a.orders) < minOrders {
			continue
		}
		category, ok := m.CategoryOf(id)
		if !ok {
			continue
		}
		p := pricingProduct{
			ID:          id,
			Category:    category.Name,
			Orders:      len(a.orders),
			AvgPrice:    a.priceSum / float64(a.lines),
			Revenue:     a.revenue,
			ReviewCount: a.reviewCount,
		}
		if a.reviewCount > 0 {
			p.AvgRating = float64(a.reviewSum) / float64(a.reviewCount)
		}
		products = append(products, p)
	}
	sort.Slice(products, func(a, b int) bool { return products[a].ID < products[b].ID })
	return products
}

// marketStats is the per-state base for expansion scoring.
type marketStats struct {
	State       string
	Customers   int
	Orders      int
	Revenue     float64
	ReviewSum   int
	ReviewCount int
}

// MarketExpansion scores states by revenue and customer-count quartiles and
// classifies them. Only states in the top two revenue quartiles are
// reported; the rest are counted as omitted.
func MarketExpansion(m *facts.Model, expansionMultiplier float64) (reports.MarketSection, int) {
	byState := make(map[string]*marketStats)
	for _, o := range m.DeliveredOrders() {
		c, ok := m.Customers[o.CustomerID]
		if !ok || c.State == "" {
			continue
		}
		s, ok := byState[c.State]
		if !ok {
			s = &marketStats{State: c.State}
			byState[c.State] = s
		}
		s.Orders++
		s.Revenue += m.OrderRevenue(o.ID)
		for _, score := range m.ReviewScores(o.ID) {
			s.ReviewSum += score
			s.ReviewCount++
		}
	}

	// Customer counts are people, not orders: distinct unique ids per state.
	uniqueByState := make(map[string]map[string]bool)
	for _, c := range m.Customers {
		if c.State == "" {
			continue
		}
		if uniqueByState[c.State] == nil {
			uniqueByState[c.State] = make(map[string]bool)
		}
		uniqueByState[c.State][m.UniqueCustomer(c.ID)] = true
	}

	states := make([]marketStats, 0, len(byState))
	for _, s := range byState {
		s.Customers = len(uniqueByState[s.State])
		states = append(states, *s)
	}
	sort.Slice(states, func(a, b int) bool { return states[a].State < states[b].State })

	revenueQuartiles := window.QuantileBucket(states, func(a, b marketStats) bool {
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.State < b.State
	}, 4)
	customerQuartiles := window.QuantileBucket(states, func(a, b marketStats) bool {
		if a.Customers != b.Customers {
			return a.Customers > b.Customers
		}
		return a.State < b.State
	}, 4)

	rows := make([]reports.MarketRow, 0, len(states))
	omitted := 0
	for i, s := range states {
		revQ, custQ := revenueQuartiles[i], customerQuartiles[i]
		if revQ > 2 {
			omitted++
			continue
		}
		aov := s.Revenue / float64(s.Orders)
		row := reports.MarketRow{
			State:              s.State,
			Customers:          s.Customers,
			Orders:             s.Orders,
			Revenue:            reports.Round2(s.Revenue),
			AvgOrderValue:      reports.Round2(aov),
			RevenueQuartile:    revQ,
			CustomerQuartile:   custQ,
			Classification:     marketClass(revQ, custQ, aov),
			ExpansionPotential: reports.Round2(s.Revenue * expansionMultiplier),
		}
		if s.ReviewCount > 0 {
			avg := float64(s.ReviewSum) / float64(s.ReviewCount)
			row.AvgReviewScore = reports.Round2Ptr(&avg)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Revenue != rows[b].Revenue {
			return rows[a].Revenue > rows[b].Revenue
		}
		return rows[a].State < rows[b].State
	})
	return reports.MarketSection{Rows: rows}, omitted
}

// marketClass maps quartile positions to a classification. Quartile 1 is
// the top quartile; first match wins.
func marketClass(revQ, custQ int, avgOrderValue float64) string {
	switch {
	case revQ == 1 && custQ == 1:
		return MarketHighGrowth
	case revQ <= 2 && avgOrderValue > 150:
		return MarketPremium
	case revQ <= 2:
		return MarketExpansionTarget
	default:
		return MarketEstablished
	}
}
