// Package health contiene los DTOs de readiness.
package health

import "time"

// HealthStatus estado de un componente.
type HealthStatus struct {
	Status  string `json:"status"` // ok | error | disabled
	Message string `json:"message,omitempty"`
}

// HealthResponse respuesta de GET /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"` // ready | degraded | unavailable
	Version    string                  `json:"version,omitempty"`
	Components map[string]HealthStatus `json:"components"`
	Timestamp  time.Time               `json:"timestamp"`
}
