// Package health tracks rolling availability of the external drug APIs.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medtrack/medication-api/externalapi"
	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/logging"
	"github.com/medtrack/medication-api/metrics"
)

// probeTerm is a cheap, always-resolvable query used to exercise each API.
const probeTerm = "aspirin"

// Monitor implements interfaces.HealthMonitor over the two external drug
// APIs. State is process-lifetime only; consecutive failures reset on the
// first success.
type Monitor struct {
	rxNorm  interfaces.RxNormClient
	openFDA interfaces.OpenFDAClient

	mu       sync.RWMutex
	statuses map[string]interfaces.ApiHealthStatus
}

func NewMonitor(rxNorm interfaces.RxNormClient, openFDA interfaces.OpenFDAClient) *Monitor {
	return &Monitor{
		rxNorm:  rxNorm,
		openFDA: openFDA,
		statuses: map[string]interfaces.ApiHealthStatus{
			externalapi.RxNormAPIName:  {ApiName: externalapi.RxNormAPIName},
			externalapi.OpenFDAAPIName: {ApiName: externalapi.OpenFDAAPIName},
		},
	}
}

// CheckAll probes both APIs concurrently and returns a snapshot of the
// resulting statuses.
func (m *Monitor) CheckAll(ctx context.Context) map[string]interfaces.ApiHealthStatus {
	var g errgroup.Group
	g.Go(func() error {
		m.probe(ctx, externalapi.RxNormAPIName, func() error {
			_, err := m.rxNorm.SearchApproximate(ctx, probeTerm)
			return err
		})
		return nil
	})
	g.Go(func() error {
		m.probe(ctx, externalapi.OpenFDAAPIName, func() error {
			_, err := m.openFDA.SearchDrugs(ctx, probeTerm, 1)
			return err
		})
		return nil
	})
	g.Wait()

	return m.snapshot()
}

// probe runs one health check and folds the outcome into the API's status.
func (m *Monitor) probe(ctx context.Context, apiName string, check func() error) {
	start := time.Now()
	err := check()
	elapsed := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.statuses[apiName]
	status.ApiName = apiName
	status.LastChecked = time.Now()
	status.ResponseTime = elapsed

	if err != nil {
		status.Healthy = false
		status.ConsecutiveFailures++
		status.LastError = err.Error()
		metrics.APIHealthy.WithLabelValues(apiName).Set(0)
		logging.Warn("API health probe failed",
			"api", apiName, "failures", status.ConsecutiveFailures, "error", err)
	} else {
		status.Healthy = true
		status.ConsecutiveFailures = 0
		status.LastError = ""
		metrics.APIHealthy.WithLabelValues(apiName).Set(1)
	}

	m.statuses[apiName] = status
}

// Status returns the last known status for apiName. Unknown names get a
// synthetic unhealthy status rather than a zero value.
func (m *Monitor) Status(apiName string) interfaces.ApiHealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if status, ok := m.statuses[apiName]; ok {
		return status
	}
	return interfaces.ApiHealthStatus{
		ApiName:   apiName,
		Healthy:   false,
		LastError: "unknown API",
	}
}

// AllHealthy reports whether every tracked API is currently healthy.
func (m *Monitor) AllHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, status := range m.statuses {
		if !status.Healthy {
			return false
		}
	}
	return true
}

func (m *Monitor) snapshot() map[string]interfaces.ApiHealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]interfaces.ApiHealthStatus, len(m.statuses))
	for name, status := range m.statuses {
		out[name] = status
	}
	return out
}
