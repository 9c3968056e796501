package types

// HealthStatus is the state reported by /health for the receipt API and
// each backing store.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// HealthComponent is one dependency of the receipt API: the receipt
// database or the Redis cache and rate limiter.
type HealthComponent struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// HealthCheck is the body of /health. Status is the worst status among the
// components.
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
}
