// Package reports defines the result bundle the analysis engines produce
// and the presentation layer consumes. Rows are ordered and numeric fields
// are rounded to two decimal places for currency and percentages.
package reports

import (
	"math"
)

// Report is the full result bundle of one analysis run.
type Report struct {
	RunID        string              `json:"run_id"`
	AsOfDate     string              `json:"as_of_date"`
	Segmentation SegmentationSection `json:"segmentation"`
	Trend        TrendSection        `json:"trend"`
	Cohorts      CohortSection       `json:"cohorts"`
	Pareto       ParetoSection       `json:"pareto"`
	Pricing      PricingSection      `json:"pricing"`
	Markets      MarketSection       `json:"markets"`
	Audit        Audit               `json:"audit"`
}

// CustomerSegment is one customer's assignment under every classification
// scheme. Only customers with at least one delivered order appear here.
type CustomerSegment struct {
	CustomerID     string  `json:"customer_id"`
	RecencyDays    int     `json:"recency_days"`
	Frequency      int     `json:"frequency"`
	Monetary       float64 `json:"monetary"`
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	Segment        string  `json:"segment"`
	Tier           string  `json:"tier"`
	ChurnBand      string  `json:"churn_band"`
}

// SegmentRollup aggregates one RFM segment.
type SegmentRollup struct {
	Segment         string  `json:"segment"`
	Customers       int     `json:"customers"`
	TotalValue      float64 `json:"total_value"`
	AvgValue        float64 `json:"avg_value"`
	AvgOrders       float64 `json:"avg_orders"`
	AvgDaysInactive float64 `json:"avg_days_inactive"`
	PotentialImpact float64 `json:"potential_impact"`
}

// TierRollup aggregates one lifetime-value tier.
type TierRollup struct {
	Tier       string  `json:"tier"`
	Customers  int     `json:"customers"`
	TotalValue float64 `json:"total_value"`
	AvgValue   float64 `json:"avg_value"`
	AvgOrders  float64 `json:"avg_orders"`
}

// ChurnRollup aggregates one churn-risk band.
type ChurnRollup struct {
	Band            string  `json:"band"`
	Customers       int     `json:"customers"`
	AvgDaysInactive float64 `json:"avg_days_inactive"`
	TotalValue      float64 `json:"total_value"`
	PotentialLoss   float64 `json:"potential_loss"`
}

type SegmentationSection struct {
	Customers      []CustomerSegment `json:"customers"`
	Segments       []SegmentRollup   `json:"segments"`
	Tiers          []TierRollup      `json:"tiers"`
	ChurnBands     []ChurnRollup     `json:"churn_bands"`
	NeverPurchased int               `json:"never_purchased"`
}

// TrendRow is one calendar month of delivered-order revenue. GrowthPct is
// nil when the previous month is absent or zero: not applicable, never 0%.
type TrendRow struct {
	Month      string   `json:"month"`
	Orders     int      `json:"orders"`
	Revenue    float64  `json:"revenue"`
	GrowthPct  *float64 `json:"growth_pct"`
	MovingAvg3 float64  `json:"moving_avg_3"`
}

type TrendSection struct {
	Rows []TrendRow `json:"rows"`
}

// CohortRow is one cohort's activity across offsets 0..3 months from the
// cohort month. RetentionAt1 is nil when the cohort is empty.
type CohortRow struct {
	CohortMonth  string   `json:"cohort_month"`
	MonthCounts  [4]int   `json:"month_counts"`
	RetentionAt1 *float64 `json:"retention_at_1"`
}

type CohortSection struct {
	Rows []CohortRow `json:"rows"`
}

// ParetoProduct is one ranked product inside the cut-off prefix.
type ParetoProduct struct {
	ProductID         string  `json:"product_id"`
	Category          string  `json:"category"`
	Rank              int     `json:"rank"`
	Revenue           float64 `json:"revenue"`
	CumulativeRevenue float64 `json:"cumulative_revenue"`
}

type ParetoSection struct {
	Threshold       float64         `json:"threshold"`
	TopProducts     int             `json:"top_products"`
	CatalogSize     int             `json:"catalog_size"`
	CatalogSharePct float64         `json:"catalog_share_pct"`
	RevenueSharePct float64         `json:"revenue_share_pct"`
	TotalRevenue    float64         `json:"total_revenue"`
	Products        []ParetoProduct `json:"products"`
}

// PricingRow is one category with enough qualifying upsell candidates.
type PricingRow struct {
	Category        string  `json:"category"`
	DisplayName     string  `json:"display_name"`
	Products        int     `json:"products"`
	AvgPrice        float64 `json:"avg_price"`
	AvgRating       float64 `json:"avg_rating"`
	CurrentRevenue  float64 `json:"current_revenue"`
	ProjectedUplift float64 `json:"projected_uplift"`
}

type PricingSection struct {
	Rows []PricingRow `json:"rows"`
}

// MarketRow is one state in the top two revenue quartiles. Quartile 1 is
// the top quartile. AvgReviewScore is nil when no delivered order in the
// state carries a review.
type MarketRow struct {
	State              string   `json:"state"`
	Customers          int      `json:"customers"`
	Orders             int      `json:"orders"`
	Revenue            float64  `json:"revenue"`
	AvgOrderValue      float64  `json:"avg_order_value"`
	AvgReviewScore     *float64 `json:"avg_review_score"`
	RevenueQuartile    int      `json:"revenue_quartile"`
	CustomerQuartile   int      `json:"customer_quartile"`
	Classification     string   `json:"classification"`
	ExpansionPotential float64  `json:"expansion_potential"`
}

type MarketSection struct {
	Rows []MarketRow `json:"rows"`
}

// Audit counts the groups each section omitted for insufficient data, so a
// successful run with omissions stays reviewable.
type Audit struct {
	OmittedCohorts    int `json:"omitted_cohorts"`
	OmittedCategories int `json:"omitted_categories"`
	OmittedStates     int `json:"omitted_states"`
}

// Round2 rounds currency and percentage values to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2Ptr rounds through an optional value, keeping absence intact.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
