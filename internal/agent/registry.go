// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agent

import (
	"fmt"
	"sync"
)

// Factory lazily constructs the Agent for a kind. Construction only
// happens on the first Get call for that kind, so heavy collaborators
// (LLM clients, search/web clients) aren't built during process startup.
type Factory func() (Agent, error)

// Registry is a process-wide, memoized agent cache keyed by kind.
type Registry struct {
	mu        sync.Mutex
	factories map[Kind]Factory
	cache     map[Kind]Agent
}

// NewRegistry builds a registry with a factory registered per kind.
func NewRegistry(factories map[Kind]Factory) *Registry {
	return &Registry{
		factories: factories,
		cache:     make(map[Kind]Agent),
	}
}

// Get returns the memoized agent for kind, constructing it on first use.
// An unregistered kind is a domain error, not a panic.
func (r *Registry) Get(kind Kind) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.cache[kind]; ok {
		return a, nil
	}

	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s", kind)
	}
	a, err := factory()
	if err != nil {
		return nil, err
	}
	r.cache[kind] = a
	return a, nil
}
