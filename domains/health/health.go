package health

import "context"

// IPinger is anything whose reachability the health check reports.
type IPinger interface {
	Ping(ctx context.Context) error
}

// StoreHealth reports reachability of the analytics store.
type StoreHealth struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// SystemHealth represents overall system health.
type SystemHealth struct {
	Status string      `json:"status"` // "healthy", "unhealthy"
	Store  StoreHealth `json:"store"`
}
