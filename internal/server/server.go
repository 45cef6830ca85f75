package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storelens/storelens/internal/reports"
)

// Server exposes one already-computed report bundle read-only. It never
// recomputes: a run is a point-in-time artifact and every request sees the
// same rows.
type Server struct {
	router *gin.Engine
	report *reports.Report
}

// NewServer creates a server instance around a finished report.
func NewServer(report *reports.Report) *Server {
	router := gin.Default()

	server := &Server{
		router: router,
		report: report,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/report", s.fullReport)
		api.GET("/report/:section", s.reportSection)
	}
}

// healthCheck endpoint for monitoring.
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "storelens",
		"run_id":  s.report.RunID,
	})
}

func (s *Server) fullReport(c *gin.Context) {
	c.JSON(http.StatusOK, s.report)
}

func (s *Server) reportSection(c *gin.Context) {
	switch c.Param("section") {
	case "segmentation":
		c.JSON(http.StatusOK, s.report.Segmentation)
	case "trend":
		c.JSON(http.StatusOK, s.report.Trend)
	case "cohorts":
		c.JSON(http.StatusOK, s.report.Cohorts)
	case "pareto":
		c.JSON(http.StatusOK, s.report.Pareto)
	case "pricing":
		c.JSON(http.StatusOK, s.report.Pricing)
	case "markets":
		c.JSON(http.StatusOK, s.report.Markets)
	case "audit":
		c.JSON(http.StatusOK, s.report.Audit)
	default:
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "unknown report section",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
