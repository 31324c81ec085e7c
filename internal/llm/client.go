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

// Package llm wraps chat-completion providers behind one small interface,
// with a memoized factory so agents sharing a config get the same client.
package llm

import "context"

// Message is a single chat turn.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// GenerateOptions tunes a single completion call.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	TimeoutS    int
}

// Client is the provider-agnostic surface agents invoke through.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
	Model() string
	Provider() string
}
