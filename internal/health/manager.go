package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/botifyai2-sketch/buildmon/internal/log"
)

// DefaultPoolSize bounds how many checks run at once
const DefaultPoolSize = 8

// Manager coordinates health checks and aggregates results.
// It runs checks on a bounded worker pool with a per-check timeout.
type Manager struct {
	checkers []Checker
	timeout  time.Duration
	poolSize int
	logger   *log.Logger
	mu       sync.RWMutex
}

// NewManager creates a new health check manager with default 5-second timeout.
func NewManager() *Manager {
	return &Manager{
		checkers: make([]Checker, 0),
		timeout:  5 * time.Second,
		poolSize: DefaultPoolSize,
	}
}

// WithTimeout sets a custom timeout for health checks.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// WithPoolSize sets how many checks may run concurrently.
func (m *Manager) WithPoolSize(size int) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > 0 {
		m.poolSize = size
	}
	return m
}

// WithLogger sets the logger used for pool failures.
func (m *Manager) WithLogger(logger *log.Logger) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
	return m
}

// AddChecker registers a new health checker.
// Checkers are executed in the order they are added.
func (m *Manager) AddChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// RemoveChecker removes a checker by name.
// Returns true if a checker was removed, false otherwise.
func (m *Manager) RemoveChecker(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, checker := range m.checkers {
		if checker.Name() == name {
			m.checkers = append(m.checkers[:i], m.checkers[i+1:]...)
			return true
		}
	}
	return false
}

// Check runs all registered health checks on the pool and returns a map
// of checker name to result. A check that panics or cannot be scheduled
// is reported unhealthy.
func (m *Manager) Check(ctx context.Context) map[string]*Result {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	timeout := m.timeout
	poolSize := m.poolSize
	logger := log.OrDefault(m.logger).WithComponent("health")
	m.mu.RUnlock()

	results := make(map[string]*Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	resultsMu := sync.Mutex{}
	record := func(name string, result *Result) {
		resultsMu.Lock()
		results[name] = result
		resultsMu.Unlock()
	}

	pool, err := ants.NewPool(poolSize,
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("health check panic recovered", "panic", fmt.Sprint(p))
		}),
		ants.WithNonblocking(false),
	)
	if err != nil {
		for _, c := range checkers {
			record(c.Name(), Unhealthy("health check pool unavailable").WithDetail("error", err.Error()))
		}
		return results
	}
	defer pool.Release()

	wg := sync.WaitGroup{}
	for _, checker := range checkers {
		c := checker
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			// Recorded first so a panic in Check still yields a result
			record(c.Name(), Unhealthy("check did not complete"))

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			result := c.Check(checkCtx)
			if result == nil {
				result = Unhealthy("check returned no result")
			}
			if result.Latency == 0 {
				result.Latency = time.Since(start)
			}
			record(c.Name(), result)
		})
		if submitErr != nil {
			wg.Done()
			record(c.Name(), Unhealthy("check could not be scheduled").WithDetail("error", submitErr.Error()))
		}
	}

	wg.Wait()
	return results
}

// Probe is a named check result in report form
type Probe struct {
	Name      string `json:"name"`
	LatencyMS int64  `json:"latencyMs"`
	Result
}

// Probes runs all checks and returns them ordered by name.
func (m *Manager) Probes(ctx context.Context) []Probe {
	results := m.Check(ctx)

	probes := make([]Probe, 0, len(results))
	for name, result := range results {
		probes = append(probes, Probe{
			Name:      name,
			LatencyMS: result.Latency.Milliseconds(),
			Result:    *result,
		})
	}
	sort.Slice(probes, func(i, j int) bool { return probes[i].Name < probes[j].Name })
	return probes
}

// OverallStatus determines the overall system health based on all check results.
// Returns:
//   - StatusHealthy if all checks are healthy
//   - StatusDegraded if any check is degraded
//   - StatusUnhealthy if any check is unhealthy
func (m *Manager) OverallStatus(results map[string]*Result) Status {
	if len(results) == 0 {
		return StatusHealthy
	}

	hasDegraded := false
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if result.Status == StatusDegraded {
			hasDegraded = true
		}
	}

	if hasDegraded {
		return StatusDegraded
	}

	return StatusHealthy
}

// CheckNames returns the names of all registered checkers.
func (m *Manager) CheckNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.checkers))
	for i, checker := range m.checkers {
		names[i] = checker.Name()
	}
	return names
}

// Count returns the number of registered checkers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checkers)
}
