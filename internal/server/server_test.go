package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelens/storelens/internal/reports"
)

func testReport() *reports.Report {
	return &reports.Report{
		RunID:    "run-123",
		AsOfDate: "2018-09-01",
		Trend: reports.TrendSection{
			Rows: []reports.TrendRow{{Month: "2018-01", Orders: 3, Revenue: 450.0, MovingAvg3: 450.0}},
		},
		Audit: reports.Audit{OmittedCohorts: 2},
	}
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(testReport())

	rec := get(t, srv, "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "run-123", body["run_id"])
}

func TestFullReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(testReport())

	rec := get(t, srv, "/api/report")

	require.Equal(t, http.StatusOK, rec.Code)
	var body reports.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-123", body.RunID)
	require.Len(t, body.Trend.Rows, 1)
	assert.Nil(t, body.Trend.Rows[0].GrowthPct, "absent growth survives the wire as null")
}

func TestReportSections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(testReport())

	for _, section := range []string{"segmentation", "trend", "cohorts", "pareto", "pricing", "markets", "audit"} {
		rec := get(t, srv, "/api/report/"+section)
		assert.Equal(t, http.StatusOK, rec.Code, section)
	}

	rec := get(t, srv, "/api/report/forecast")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
