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

package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// SerpAPIProvider hits the SerpAPI search.json endpoint. Supported engines
// follow SerpAPI's own documentation (google, bing, duckduckgo, ...).
type SerpAPIProvider struct {
	apiKey string
	engine string
	client *resty.Client
}

// NewSerpAPIProvider builds a provider; engine defaults to duckduckgo.
func NewSerpAPIProvider(apiKey, engine string, timeoutS int) (*SerpAPIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("serpapi: api key is required")
	}
	if engine == "" {
		engine = "duckduckgo"
	}
	if timeoutS <= 0 {
		timeoutS = 10
	}
	c := resty.New()
	c.SetTimeout(time.Duration(timeoutS) * time.Second)
	c.SetHeader("Accept", "application/json")
	c.SetHeader("User-Agent", "agentic-pipeline/content-agent")
	return &SerpAPIProvider{apiKey: apiKey, engine: engine, client: c}, nil
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Title string `json:"title"`
		Name  string `json:"name"`
		Link  string `json:"link"`
		URL   string `json:"url"`
	} `json:"organic_results"`
}

func (p *SerpAPIProvider) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 5
	}
	num := limit
	if num < 1 {
		num = 1
	}
	if num > 10 {
		num = 10
	}

	var result serpAPIResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  p.engine,
			"q":       query,
			"api_key": p.apiKey,
			"num":     fmt.Sprintf("%d", num),
		}).
		SetResult(&result).
		Get("https://serpapi.com/search.json")
	if err != nil {
		return nil, fmt.Errorf("serpapi search failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned %d: %s", resp.StatusCode(), resp.String())
	}

	hits := make([]Hit, 0, limit)
	for _, it := range result.OrganicResults {
		title := it.Title
		if title == "" {
			title = it.Name
		}
		u := it.Link
		if u == "" {
			u = it.URL
		}
		if title == "" || u == "" {
			continue
		}
		if len(title) > 240 {
			title = title[:240]
		}
		hits = append(hits, Hit{Title: title, URL: u})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}
