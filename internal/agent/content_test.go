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
	"fmt"
	"testing"

	"agentic-pipeline/internal/search"
	"agentic-pipeline/internal/webfetch"
)

type fakeSearchProvider struct {
	hits []search.Hit
	err  error
}

func (f *fakeSearchProvider) Search(ctx context.Context, query string, limit int) ([]search.Hit, error) {
	return f.hits, f.err
}

type fakeFetcher struct {
	rejected map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (webfetch.Page, error) {
	if f.rejected[rawURL] {
		return webfetch.Page{}, fmt.Errorf("not allowed: %s", rawURL)
	}
	return webfetch.Page{Title: "Title for " + rawURL, URL: rawURL}, nil
}

func TestContentAgent_Run_Success(t *testing.T) {
	provider := &fakeSearchProvider{hits: []search.Hit{
		{Title: "A", URL: "https://wikipedia.org/a"},
		{Title: "B", URL: "https://mdn.mozilla.org/b"},
		{Title: "C", URL: "https://example.com/c"},
	}}
	fetcher := &fakeFetcher{}
	client := &fakeLLM{response: `{"answer": "a well sourced answer", "sources": [{"title": "A", "url": "https://wikipedia.org/a"}, {"title": "B", "url": "https://mdn.mozilla.org/b"}]}`}

	a := NewContentAgent(client, provider, fetcher)
	out, err := a.Run(context.Background(), "what is x", "job-1", "req-1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	co := out.(ContentOutput)
	if len(co.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(co.Sources))
	}
}

func TestContentAgent_Run_InsufficientSources(t *testing.T) {
	provider := &fakeSearchProvider{hits: []search.Hit{
		{Title: "A", URL: "https://wikipedia.org/a"},
	}}
	fetcher := &fakeFetcher{}
	client := &fakeLLM{}

	a := NewContentAgent(client, provider, fetcher)
	_, err := a.Run(context.Background(), "what is x", "job-1", "req-1", nil)
	if err == nil || err.Error() != "insufficient_sources" {
		t.Fatalf("expected insufficient_sources, got %v", err)
	}
}

func TestContentAgent_Run_ModelSourcesOutsideWhitelistRejected(t *testing.T) {
	provider := &fakeSearchProvider{hits: []search.Hit{
		{Title: "A", URL: "https://wikipedia.org/a"},
		{Title: "B", URL: "https://mdn.mozilla.org/b"},
	}}
	fetcher := &fakeFetcher{}
	// The model declares a source it was never given — only one of the two
	// overlaps with the gathered set, so the intersection is too small.
	client := &fakeLLM{response: `{"answer": "an answer", "sources": [{"title": "A", "url": "https://wikipedia.org/a"}, {"title": "Z", "url": "https://evil.example/z"}]}`}

	a := NewContentAgent(client, provider, fetcher)
	_, err := a.Run(context.Background(), "what is x", "job-1", "req-1", nil)
	if err == nil || err.Error() != "model_output_sources_not_in_whitelist" {
		t.Fatalf("expected model_output_sources_not_in_whitelist, got %v", err)
	}
}

func TestContentAgent_Run_SkipsFetchRejectedHits(t *testing.T) {
	provider := &fakeSearchProvider{hits: []search.Hit{
		{Title: "A", URL: "https://notallowed.example/a"},
		{Title: "B", URL: "https://wikipedia.org/b"},
		{Title: "C", URL: "https://mdn.mozilla.org/c"},
	}}
	fetcher := &fakeFetcher{rejected: map[string]bool{"https://notallowed.example/a": true}}
	client := &fakeLLM{response: `{"answer": "a well sourced answer", "sources": [{"title": "B", "url": "https://wikipedia.org/b"}, {"title": "C", "url": "https://mdn.mozilla.org/c"}]}`}

	a := NewContentAgent(client, provider, fetcher)
	out, err := a.Run(context.Background(), "what is x", "job-1", "req-1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	co := out.(ContentOutput)
	if len(co.Sources) != 2 {
		t.Fatalf("expected the rejected hit to be skipped and still reach 2 valid sources, got %d", len(co.Sources))
	}
}
