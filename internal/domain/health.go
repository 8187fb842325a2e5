package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// Health is returned by GET /health.
type Health struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// GatewayMetrics is returned by GET /v1/metrics/gateway.
type GatewayMetrics struct {
	TotalCalls      int64   `json:"totalCalls"`
	SuccessfulCalls int64   `json:"successfulCalls"`
	UpstreamErrors  int64   `json:"upstreamErrors"`
	TransportErrors int64   `json:"transportErrors"`
	ErrorRate       float64 `json:"errorRate"`
	RateLimited     int64   `json:"rateLimited"`
	Period          string  `json:"period"`
}
