package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/spotmatch/server/internal/observability"
)

// MetricsResponse reports pipeline counters and latency percentiles.
type MetricsResponse struct {
	TotalRequests  int64                        `json:"total_requests"`
	FailedRequests int64                        `json:"failed_requests"`
	P50LatencyMs   int64                        `json:"p50_latency_ms"`
	P95LatencyMs   int64                        `json:"p95_latency_ms"`
	Operations     map[string]OperationResponse `json:"operations"`
}

// OperationResponse reports counters for one named operation.
type OperationResponse struct {
	Count        int64 `json:"count"`
	ErrorCount   int64 `json:"error_count"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// GetSystemMetrics returns a snapshot of the process-wide collector.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetSystemMetrics(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()

	response := MetricsResponse{
		TotalRequests:  snapshot.RequestTotal,
		FailedRequests: snapshot.RequestFailed,
		P50LatencyMs:   snapshot.P50LatencyMs,
		P95LatencyMs:   snapshot.P95LatencyMs,
		Operations:     make(map[string]OperationResponse, len(snapshot.Operations)),
	}
	for name, op := range snapshot.Operations {
		response.Operations[name] = OperationResponse{
			Count:        op.Count,
			ErrorCount:   op.ErrorCount,
			AvgLatencyMs: op.AvgDurationMs,
		}
	}
	return c.JSON(http.StatusOK, response)
}
