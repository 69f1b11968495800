package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
	"github.com/jalgreatworks0/ClientForge-sub014/module"
)

// visit colors for the dependency DFS
type color uint8

const (
	unvisited color = iota
	visiting
	visited
)

// ResolveDependencies computes a dependency-respecting initialization
// order over all registered modules using a three-color depth-first
// search. Every module appears strictly after all of its required
// dependencies.
//
// A required dependency missing from the registry is fatal. A declared
// optional dependency that is absent only logs a warning; when present
// it participates in ordering like a required one. A cycle is fatal and
// the error names the full cycle path.
func (r *Registry) ResolveDependencies() ([]string, error) {
	r.mu.RLock()
	modules := make(map[string]module.Interface, len(r.modules))
	for name, m := range r.modules {
		modules[name] = m
	}
	r.mu.RUnlock()

	// Edges per module: required deps always, optional deps when present
	edges := make(map[string][]string, len(modules))
	for name, m := range modules {
		var deps []string
		for _, dep := range m.Dependencies() {
			if _, exists := modules[dep]; !exists {
				return nil, module.Errorf(name, module.PhaseInitialize,
					"depends on %q, which is not registered", dep)
			}
			deps = append(deps, dep)
		}
		if od, ok := m.(module.OptionalDependent); ok {
			for _, dep := range od.OptionalDependencies() {
				if _, exists := modules[dep]; !exists {
					logger.Warnf(nil, "module %q optional dependency %q is not registered, skipping", name, dep)
					continue
				}
				deps = append(deps, dep)
			}
		}
		edges[name] = deps
	}

	// Deterministic traversal: sorted roots, declared edge order
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	colors := make(map[string]color, len(modules))
	order := make([]string, 0, len(modules))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		colors[name] = visiting
		path = append(path, name)

		for _, dep := range edges[name] {
			switch colors[dep] {
			case visiting:
				return fmt.Errorf("circular dependency detected: %s", cyclePath(path, dep))
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		colors[name] = visited
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if colors[name] == unvisited {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// cyclePath renders the cycle reaching back to dep, e.g. "a -> b -> c -> a"
func cyclePath(path []string, dep string) string {
	start := 0
	for i, name := range path {
		if name == dep {
			start = i
			break
		}
	}
	return strings.Join(append(append([]string(nil), path[start:]...), dep), " -> ")
}
