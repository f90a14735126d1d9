package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger is anything the health monitor can probe, such as a Mongo client
// wrapper or a Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	Healthy   bool            `json:"healthy"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings every target once and stores the snapshot.
func CheckHealth(ctx context.Context, targets map[string]Pinger) HealthStatus {
	status := HealthStatus{Services: make(map[string]bool, len(targets)), Healthy: true}
	for name, target := range targets {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := target.Ping(pctx) == nil
		cancel()
		status.Services[name] = ok
		if !ok {
			status.Healthy = false
		}
	}
	status.CheckedAt = time.Now()

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, targets map[string]Pinger) {
	CheckHealth(ctx, targets)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, targets)
			}
		}
	}()
}
