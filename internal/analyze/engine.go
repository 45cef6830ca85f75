// Package analyze holds the analysis engines: customer segmentation, trend
// and cohort retention, and opportunity detection. The engines consume the
// fact model and the window primitives only; they never depend on each
// other, so the orchestrator fans them out as parallel tasks over the
// read-only model and joins the results into one report bundle.
package analyze

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/reports"
)

// Engine runs the full analysis over one fact model.
type Engine struct {
	cfg config.EngineConfig
	log *slog.Logger
}

func NewEngine(cfg config.EngineConfig, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, log: log}
}

// Run validates the parameters, fans the three engines out over the model
// and assembles the report. The model is never mutated, so the parallel
// tasks share it without coordination.
func (e *Engine) Run(m *facts.Model) (*reports.Report, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	asOf, err := e.cfg.AsOf()
	if err != nil {
		return nil, err
	}
	cohortFloor, err := e.cfg.CohortFloor()
	if err != nil {
		return nil, err
	}

	report := &reports.Report{
		RunID:    uuid.New().String(),
		AsOfDate: e.cfg.AsOfDate,
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		report.Segmentation = SegmentCustomers(m, e.cfg, asOf)
	}()
	go func() {
		defer wg.Done()
		report.Trend = MonthlyTrend(m)
		report.Cohorts, report.Audit.OmittedCohorts = CohortRetention(m, cohortFloor)
	}()
	go func() {
		defer wg.Done()
		report.Pareto = ParetoCutoff(m, e.cfg.ParetoThreshold)
		report.Pricing, report.Audit.OmittedCategories = PricingOpportunity(m, e.cfg)
		report.Markets, report.Audit.OmittedStates = MarketExpansion(m, e.cfg.ExpansionMultiplier)
	}()

	wg.Wait()

	e.log.Info("analysis complete",
		"run_id", report.RunID,
		"segments", len(report.Segmentation.Segments),
		"trend_months", len(report.Trend.Rows),
		"cohorts", len(report.Cohorts.Rows),
		"pareto_products", report.Pareto.TopProducts,
		"pricing_categories", len(report.Pricing.Rows),
		"market_states", len(report.Markets.Rows),
		"omitted_cohorts", report.Audit.OmittedCohorts,
		"omitted_categories", report.Audit.OmittedCategories,
		"omitted_states", report.Audit.OmittedStates,
	)
	return report, nil
}
