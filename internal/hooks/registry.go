package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/botifyai2-sketch/buildmon/internal/log"
)

// MaxConcurrency bounds how many hooks run at once for one event
const MaxConcurrency = 4

type entry struct {
	hook    Hook
	timeout time.Duration
}

// Registry maps event types to hooks and runs them
type Registry struct {
	mu        sync.RWMutex
	hooks     map[EventType][]entry
	factories map[string]Factory
	logger    *log.Logger
}

// NewRegistry returns a registry with the built-in factories
func NewRegistry(logger *log.Logger) *Registry {
	r := &Registry{
		hooks:     make(map[EventType][]entry),
		factories: make(map[string]Factory),
		logger:    log.OrDefault(logger).WithComponent("hooks"),
	}
	RegisterBuiltins(r)
	return r
}

// FromConfig builds a registry holding every enabled hook in cfgs
func FromConfig(cfgs []Config, logger *log.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for i := range cfgs {
		if err := r.RegisterFromConfig(&cfgs[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterFactory adds or replaces the factory for a hook type
func (r *Registry) RegisterFactory(hookType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[hookType] = f
}

// Register subscribes hook to each of its event types
func (r *Registry) Register(hook Hook, timeout time.Duration) error {
	if hook == nil {
		return fmt.Errorf("hook cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, et := range hook.EventTypes() {
		r.hooks[et] = append(r.hooks[et], entry{hook: hook, timeout: timeout})
	}
	return nil
}

// RegisterFromConfig validates cfg and registers the hook it describes.
// Disabled hooks are skipped.
func (r *Registry) RegisterFromConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.IsEnabled() {
		return nil
	}

	r.mu.RLock()
	factory, ok := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("hook %s: unknown type %q", cfg.Name, cfg.Type)
	}

	hook, err := factory(cfg)
	if err != nil {
		return err
	}
	return r.Register(hook, cfg.Timeout)
}

// HasHooksFor reports whether any hook subscribes to eventType
func (r *Registry) HasHooksFor(eventType EventType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[eventType]) > 0
}

// Count returns the number of distinct registered hooks
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, entries := range r.hooks {
		for _, e := range entries {
			seen[e.hook.Name()] = struct{}{}
		}
	}
	return len(seen)
}

// Trigger runs every hook subscribed to event.Type and waits for them.
// Failures are logged and reported in the results; they never propagate.
func (r *Registry) Trigger(ctx context.Context, event *Event) []ExecutionResult {
	r.mu.RLock()
	entries := append([]entry(nil), r.hooks[event.Type]...)
	r.mu.RUnlock()

	if len(entries) == 0 {
		return nil
	}

	results := make([]ExecutionResult, len(entries))
	pool, err := ants.NewPool(MaxConcurrency, ants.WithPanicHandler(func(p any) {
		r.logger.Error("hook panic recovered", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		for i, e := range entries {
			results[i] = failed(e.hook, event, fmt.Errorf("hook pool unavailable: %w", err))
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, e := range entries {
		i, e := i, e
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			// Stored first so a panicking hook still reports a failure
			results[i] = failed(e.hook, event, errors.New("hook did not complete"))
			results[i] = r.execute(ctx, e, event)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = failed(e.hook, event, submitErr)
		}
	}
	wg.Wait()

	for _, res := range results {
		if !res.Success {
			r.logger.Warn("hook failed", "hook", res.HookName, "event", string(res.EventType), "error", res.Error)
		}
	}
	return results
}

func (r *Registry) execute(ctx context.Context, e entry, event *Event) ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	err := e.hook.Execute(ctx, event)
	res := ExecutionResult{
		HookName:  e.hook.Name(),
		EventType: event.Type,
		Success:   err == nil,
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if err != nil {
		res.Error = err.Error()
	}
	r.logger.Debug("hook executed", "hook", res.HookName, "event", string(event.Type), "duration", res.Duration)
	return res
}

func failed(h Hook, event *Event, err error) ExecutionResult {
	return ExecutionResult{
		HookName:  h.Name(),
		EventType: event.Type,
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
}
