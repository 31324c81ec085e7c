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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentic-pipeline/internal/llm"
	"agentic-pipeline/internal/search"
	"agentic-pipeline/internal/webfetch"
)

// ContentAgent produces a sourced answer backed by at least two
// whitelist-validated sources, using only links it gathered itself.
type ContentAgent struct {
	client   llm.Client
	provider search.Provider
	fetcher  webfetch.Fetcher
}

// NewContentAgent wires a content agent to its LLM client, search
// provider, and whitelist-enforcing fetcher.
func NewContentAgent(client llm.Client, provider search.Provider, fetcher webfetch.Fetcher) *ContentAgent {
	return &ContentAgent{client: client, provider: provider, fetcher: fetcher}
}

func (a *ContentAgent) Kind() Kind { return KindContent }

func (a *ContentAgent) gatherSources(ctx context.Context, query string, minSources, limit int) ([]Source, error) {
	hits, err := a.provider.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("content agent: search failed: %w", err)
	}

	var sources []Source
	for _, h := range hits {
		page, err := a.fetcher.Fetch(ctx, h.URL)
		if err != nil {
			continue
		}
		sources = append(sources, Source{Title: page.Title, URL: page.URL})
		if len(sources) >= minSources {
			break
		}
	}
	return sources, nil
}

const contentSystemPrompt = `You answer the given task using ONLY the sources listed below. Respond with ONLY
a JSON object of the shape {"answer": string, "sources": [{"title": string, "url": string}, ...]}. Every
entry in "sources" MUST be one of the URLs given to you. No markdown, no commentary outside the JSON.`

func (a *ContentAgent) Run(ctx context.Context, task, jobID, requestID string, progressCb ProgressFunc) (any, error) {
	safeProgress(progressCb, 0.20)

	srcs, err := a.gatherSources(ctx, task, 2, 5)
	if err != nil {
		return nil, err
	}
	if len(srcs) < 2 {
		return nil, fmt.Errorf("insufficient_sources")
	}

	var sourcesBlock strings.Builder
	for _, s := range srcs {
		fmt.Fprintf(&sourcesBlock, "- %s — %s\n", s.Title, s.URL)
	}

	messages := []llm.Message{
		{Role: "system", Content: contentSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Task: %s\n\nSources:\n%s", task, sourcesBlock.String())},
	}

	safeProgress(progressCb, 0.80)
	raw, err := a.client.Chat(ctx, messages, llm.GenerateOptions{Temperature: 0.35})
	if err != nil {
		return nil, fmt.Errorf("content agent: llm call failed: %w", err)
	}

	var out ContentOutput
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &out); err != nil {
		return nil, fmt.Errorf("content agent: invalid model output: %w", err)
	}

	allowed := make(map[string]Source, len(srcs))
	for _, s := range srcs {
		allowed[s.URL] = s
	}
	filtered := make([]Source, 0, len(out.Sources))
	for _, s := range out.Sources {
		if _, ok := allowed[s.URL]; ok {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) < 2 {
		return nil, fmt.Errorf("model_output_sources_not_in_whitelist")
	}
	out.Sources = filtered

	safeProgress(progressCb, 0.90)
	return out, nil
}
