// Package builtin wires the runners shipped with sdkbench into a registry.
package builtin

import (
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runners/golang"
	"sdkbench/pkg/runners/python"
	"sdkbench/pkg/runners/typescript"
)

// Factories returns the built-in runners in registration order. Order
// breaks confidence ties.
func Factories() []runners.Factory {
	return []runners.Factory{
		python.New,
		typescript.New,
		golang.New,
	}
}

// NewRegistry creates a registry holding every built-in runner
func NewRegistry(env runners.Env) *runners.Registry {
	return runners.NewRegistry(env, Factories()...)
}
