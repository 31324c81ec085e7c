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
	"regexp"
	"strings"

	"agentic-pipeline/internal/llm"
)

var ctrlCharsRE = regexp.MustCompile("[\x00-\x08\x0B-\x0C\x0E-\x1F]")

var mdFenceRE = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\n(.*)\n```$")

func sanitizeText(s string) string {
	return ctrlCharsRE.ReplaceAllString(s, "")
}

func stripMDCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := mdFenceRE.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return s
}

// CodeAgent generates structured code output: language, code, explanation.
type CodeAgent struct {
	client llm.Client
}

// NewCodeAgent builds a code agent bound to a low-temperature LLM client
// — code generation benefits from deterministic output.
func NewCodeAgent(client llm.Client) *CodeAgent {
	return &CodeAgent{client: client}
}

func (a *CodeAgent) Kind() Kind { return KindCode }

const codeSystemPrompt = `You write code for the given task. Respond with ONLY a JSON object of
the shape {"language": string, "code": string, "explanation": string}. No markdown, no commentary
outside the JSON.`

func (a *CodeAgent) Run(ctx context.Context, task, jobID, requestID string, progressCb ProgressFunc) (any, error) {
	safeProgress(progressCb, 0.30)

	cleanTask := sanitizeText(stripMDCodeFence(task))
	messages := []llm.Message{
		{Role: "system", Content: codeSystemPrompt},
		{Role: "user", Content: cleanTask},
	}

	safeProgress(progressCb, 0.70)
	raw, err := a.client.Chat(ctx, messages, llm.GenerateOptions{Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("code agent: llm call failed: %w", err)
	}

	var out CodeOutput
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &out); err != nil {
		return nil, fmt.Errorf("code agent: invalid model output: %w", err)
	}

	out.Code = stripMDCodeFence(sanitizeText(out.Code))
	out.Explanation = sanitizeText(out.Explanation)
	out.Language = sanitizeText(out.Language)

	if len([]rune(strings.Join(strings.Fields(out.Code), ""))) < 5 {
		return nil, fmt.Errorf("empty_or_invalid_code")
	}

	safeProgress(progressCb, 0.90)
	return out, nil
}

// extractJSONObject trims leading/trailing prose a model sometimes adds
// around the JSON object despite instructions.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
