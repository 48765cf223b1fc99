package runners

import (
	"sync"

	"sdkbench/pkg/detector"
)

// Registry holds runner factories in registration order. Adding a language
// means registering another factory.
type Registry struct {
	mu        sync.RWMutex
	env       Env
	factories []Factory
}

// NewRegistry creates a registry with the given factories
func NewRegistry(env Env, factories ...Factory) *Registry {
	r := &Registry{env: env.WithDefaults()}
	for _, f := range factories {
		r.Register(f)
	}
	return r
}

// Register appends a factory. Earlier registrations win confidence ties.
func (r *Registry) Register(f Factory) {
	if f == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, f)
}

// WithEnv returns a registry with the same factories and a different
// environment
func (r *Registry) WithEnv(env Env) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{env: env.WithDefaults(), factories: append([]Factory(nil), r.factories...)}
}

// Env returns the environment handed to every runner
func (r *Registry) Env() Env {
	return r.env
}

func (r *Registry) instantiate(dir string) []Runner {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Runner, 0, len(r.factories))
	for _, f := range r.factories {
		out = append(out, f(dir, r.env))
	}
	return out
}

// Names lists the registered runners in registration order
func (r *Registry) Names() []string {
	var names []string
	for _, runner := range r.instantiate("") {
		names = append(names, runner.Name())
	}
	return names
}

// Detect returns the detected runner with the strictly highest confidence
// together with its detection result. A nil runner means nothing matched.
func (r *Registry) Detect(dir string) (Runner, detector.DetectionResult) {
	var (
		best    Runner
		bestRes detector.DetectionResult
	)
	for _, runner := range r.instantiate(dir) {
		res := runner.Detect()
		if !res.Detected {
			continue
		}
		if best == nil || res.Confidence > bestRes.Confidence {
			best, bestRes = runner, res
		}
	}
	if best == nil {
		return nil, detector.NotDetected("")
	}
	return best, bestRes
}

// GetRunner returns the best runner for dir, or nil
func (r *Registry) GetRunner(dir string) Runner {
	runner, _ := r.Detect(dir)
	return runner
}

// DetectAll returns every runner's detection result in registration order
func (r *Registry) DetectAll(dir string) []detector.DetectionResult {
	runners := r.instantiate(dir)
	results := make([]detector.DetectionResult, 0, len(runners))
	for _, runner := range runners {
		results = append(results, runner.Detect())
	}
	return results
}
