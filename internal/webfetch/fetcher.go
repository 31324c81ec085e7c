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

// Package webfetch validates candidate URLs against a domain whitelist
// and extracts a title for the content agent's source-gathering step.
package webfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// ErrNotWhitelisted is returned by Fetch when the URL's host is not an
// exact or subdomain match of any configured whitelist entry.
var ErrNotWhitelisted = errors.New("url_not_whitelisted")

// Page is the validated result of fetching a candidate URL.
type Page struct {
	Title string
	URL   string
}

// Fetcher validates and fetches candidate source pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// HTTPFetcher fetches over HTTP(S) and extracts the page <title> via
// goquery instead of hand-rolled regex scraping; the meta description is
// not read.
type HTTPFetcher struct {
	whitelist []string // lowercase host suffixes; empty = allow all
	client    *resty.Client
}

// NewHTTPFetcher builds a fetcher. An empty whitelist allows any host.
func NewHTTPFetcher(whitelist []string, timeoutS int, userAgent string) *HTTPFetcher {
	if timeoutS <= 0 {
		timeoutS = 10
	}
	if userAgent == "" {
		userAgent = "agentic-pipeline/content-agent"
	}
	norm := make([]string, 0, len(whitelist))
	for _, d := range whitelist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			norm = append(norm, d)
		}
	}

	c := resty.New()
	c.SetTimeout(time.Duration(timeoutS) * time.Second)
	c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "text/html,application/xhtml+xml")

	return &HTTPFetcher{whitelist: norm, client: c}
}

func (f *HTTPFetcher) isAllowed(rawURL string) bool {
	if len(f.whitelist) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range f.whitelist {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if !f.isAllowed(rawURL) {
		return Page{}, fmt.Errorf("%w: %s", ErrNotWhitelisted, rawURL)
	}

	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Page{}, fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return Page{}, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		if u, err := url.Parse(rawURL); err == nil {
			title = u.Hostname()
		}
		if title == "" {
			title = "web"
		}
	}
	if len(title) > 240 {
		title = title[:240]
	}

	return Page{Title: title, URL: rawURL}, nil
}
