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

// Package search adapts an upstream search API into candidate hits for
// the content agent's source-gathering step.
package search

import "context"

// Hit is one candidate search result.
type Hit struct {
	Title string
	URL   string
}

// Provider finds up to limit candidates for query.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}
