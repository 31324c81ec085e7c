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
	"strings"
	"testing"

	"agentic-pipeline/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	return f.response, f.err
}
func (f *fakeLLM) Model() string    { return "fake" }
func (f *fakeLLM) Provider() string { return "fake" }

func TestCodeAgent_Run_Success(t *testing.T) {
	client := &fakeLLM{response: "{\"language\": \"go\", \"code\": \"```go\\nfunc main() {}\\n```\", \"explanation\": \"entry point\"}"}
	a := NewCodeAgent(client)

	var progress []float64
	out, err := a.Run(context.Background(), "write a go hello world", "job-1", "req-1", func(v float64) {
		progress = append(progress, v)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	co, ok := out.(CodeOutput)
	if !ok {
		t.Fatalf("expected CodeOutput, got %T", out)
	}
	if strings.Contains(co.Code, "```") {
		t.Fatalf("expected markdown fence to be stripped, got %q", co.Code)
	}
	if len(progress) != 3 || progress[len(progress)-1] != 0.90 {
		t.Fatalf("expected progress milestones 0.30/0.70/0.90, got %v", progress)
	}
}

func TestCodeAgent_Run_RejectsEmptyCode(t *testing.T) {
	client := &fakeLLM{response: `{"language": "go", "code": "  ", "explanation": ""}`}
	a := NewCodeAgent(client)

	_, err := a.Run(context.Background(), "write something", "job-1", "req-1", nil)
	if err == nil || err.Error() != "empty_or_invalid_code" {
		t.Fatalf("expected empty_or_invalid_code, got %v", err)
	}
}

func TestCodeAgent_Run_SanitizesControlChars(t *testing.T) {
	client := &fakeLLM{response: "{\"language\": \"go\", \"code\": \"func main()\\u0001{}\", \"explanation\": \"ok\"}"}
	a := NewCodeAgent(client)

	out, err := a.Run(context.Background(), "task", "job-1", "req-1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	co := out.(CodeOutput)
	if strings.ContainsRune(co.Code, '\x01') {
		t.Fatalf("expected control char stripped, got %q", co.Code)
	}
}

func TestCodeAgent_Run_ProgressCallbackNeverPanicsAgent(t *testing.T) {
	client := &fakeLLM{response: `{"language": "go", "code": "func main() {}", "explanation": "ok"}`}
	a := NewCodeAgent(client)

	_, err := a.Run(context.Background(), "task", "job-1", "req-1", func(v float64) {
		panic("progress callback exploded")
	})
	if err != nil {
		t.Fatalf("a panicking progress callback must not fail the agent run: %v", err)
	}
}
