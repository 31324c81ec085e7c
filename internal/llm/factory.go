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

package llm

import "sync"

// clientKey is the full configuration tuple a memoized client is keyed by.
// Go has no @lru_cache-style decorator, so the factory is a mutex-guarded
// map instead — the same idiom the agent registry uses for its own cache.
type clientKey struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	TimeoutS    int
	MaxRetries  int
}

var (
	factoryMu sync.Mutex
	factory   = map[clientKey]Client{}
)

// GetClient returns the memoized client for the given tuple, constructing
// it on first use.
func GetClient(provider, model, apiKey, baseURL string, temperature float64, timeoutS, maxRetries int) Client {
	key := clientKey{
		Provider:    provider,
		Model:       model,
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Temperature: temperature,
		TimeoutS:    timeoutS,
		MaxRetries:  maxRetries,
	}

	factoryMu.Lock()
	defer factoryMu.Unlock()
	if c, ok := factory[key]; ok {
		return c
	}

	var c Client
	switch provider {
	case "openai", "qwen":
		c = NewOpenAIClient(model, apiKey, baseURL, temperature, timeoutS, maxRetries)
	default:
		c = NewOpenAIClient(model, apiKey, baseURL, temperature, timeoutS, maxRetries)
	}
	factory[key] = c
	return c
}
