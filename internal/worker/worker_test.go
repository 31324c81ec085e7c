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

package worker

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"agentic-pipeline/internal/agent"
	"agentic-pipeline/internal/eventlog"
	"agentic-pipeline/internal/job"
	"agentic-pipeline/internal/queue"
	"agentic-pipeline/pkg/log"
)

type stubAgent struct {
	kind   agent.Kind
	output any
	err    error
}

func (s *stubAgent) Kind() agent.Kind { return s.kind }
func (s *stubAgent) Run(ctx context.Context, task, jobID, requestID string, progressCb agent.ProgressFunc) (any, error) {
	if progressCb != nil {
		progressCb(0.5)
	}
	return s.output, s.err
}

func newTestWorker(t *testing.T, reg *agent.Registry) (*Worker, *job.MemoryStore, *eventlog.MemoryStore) {
	t.Helper()
	logger, err := log.NewLogger(&log.Config{Level: "error", Format: "text"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	jobs := job.NewMemoryStore()
	events := eventlog.NewMemoryStore()
	q := queue.NewMemoryQueue()
	w := New("worker-1", jobs, events, q, q, reg, logger, 2)
	return w, jobs, events
}

func TestHandleJob_HappyPathCode(t *testing.T) {
	ctx := context.Background()
	reg := agent.NewRegistry(map[agent.Kind]agent.Factory{
		agent.KindCode: func() (agent.Agent, error) {
			return &stubAgent{kind: agent.KindCode, output: agent.CodeOutput{Language: "go", Code: "func main() {}", Explanation: "x"}}, nil
		},
	})
	w, jobs, events := newTestWorker(t, reg)

	j := &job.Job{ID: "j1", Task: "write a go function with unit test", Status: job.StatusQueued}
	_ = jobs.Create(ctx, j)

	w.HandleJob(ctx, "j1", "req-1")

	got, _ := jobs.Get(ctx, "j1")
	if got.Status != job.StatusSucceeded {
		t.Fatalf("expected succeeded, got %v", got.Status)
	}
	if got.Progress == nil || *got.Progress != 1.0 {
		t.Fatalf("expected progress forced to 1.0, got %v", got.Progress)
	}
	if got.DecidedAgent != "code" {
		t.Fatalf("expected decided_agent=code, got %s", got.DecidedAgent)
	}

	evs, _ := events.ListByJob(ctx, "j1", 0)
	var sawFinished bool
	for _, e := range evs {
		if e.Type == eventlog.AgentFinished {
			sawFinished = true
		}
	}
	if !sawFinished {
		t.Fatalf("expected an agent_finished event, got %+v", evs)
	}
}

func TestHandleJob_ContentInsufficientSources(t *testing.T) {
	ctx := context.Background()
	reg := agent.NewRegistry(map[agent.Kind]agent.Factory{
		agent.KindContent: func() (agent.Agent, error) {
			return &stubAgent{kind: agent.KindContent, err: errInsufficientSources()}, nil
		},
	})
	w, jobs, _ := newTestWorker(t, reg)

	j := &job.Job{ID: "j1", Task: "write a blog about x", Status: job.StatusQueued}
	_ = jobs.Create(ctx, j)

	w.HandleJob(ctx, "j1", "req-1")

	got, _ := jobs.Get(ctx, "j1")
	if got.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %v", got.Status)
	}
	if got.Error == nil || got.Error.Code != "insufficient_sources" {
		t.Fatalf("expected error.code=insufficient_sources, got %+v", got.Error)
	}
	if got.Error.Retryable {
		t.Fatalf("expected insufficient_sources to be non-retryable")
	}
	if got.Result != nil {
		t.Fatalf("expected no result written on failure")
	}
}

func TestHandleJob_StaleTransitionReturnsNormally(t *testing.T) {
	ctx := context.Background()
	reg := agent.NewRegistry(map[agent.Kind]agent.Factory{})
	w, jobs, events := newTestWorker(t, reg)

	j := &job.Job{ID: "j1", Task: "anything", Status: job.StatusRunning}
	_ = jobs.Create(ctx, j)

	w.HandleJob(ctx, "j1", "req-1")

	got, _ := jobs.Get(ctx, "j1")
	if got.Status != job.StatusRunning {
		t.Fatalf("expected status to remain unchanged (running), got %v", got.Status)
	}

	evs, _ := events.ListByJob(ctx, "j1", 0)
	if len(evs) != 1 || evs[0].Type != eventlog.Error {
		t.Fatalf("expected exactly one error event for the redundant claim, got %+v", evs)
	}
}

func TestHandleJob_TransientErrorMarkedRetryable(t *testing.T) {
	ctx := context.Background()
	reg := agent.NewRegistry(map[agent.Kind]agent.Factory{
		agent.KindCode: func() (agent.Agent, error) {
			return &stubAgent{kind: agent.KindCode, err: context.DeadlineExceeded}, nil
		},
	})
	w, jobs, _ := newTestWorker(t, reg)

	j := &job.Job{ID: "j1", Task: "write a go function", Status: job.StatusQueued}
	_ = jobs.Create(ctx, j)

	w.HandleJob(ctx, "j1", "req-1")

	got, _ := jobs.Get(ctx, "j1")
	if got.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %v", got.Status)
	}
	if got.Error == nil || got.Error.Code != "agent_run_error" {
		t.Fatalf("expected error.code=agent_run_error, got %+v", got.Error)
	}
	if !got.Error.Retryable {
		t.Fatalf("expected a timed-out call to be marked retryable")
	}
}

func TestIsTransient(t *testing.T) {
	if !isTransient(context.DeadlineExceeded) {
		t.Fatalf("context.DeadlineExceeded should be transient")
	}
	if !isTransient(&url.Error{Op: "Get", URL: "http://x", Err: fakeTimeoutErr{}}) {
		t.Fatalf("a timed-out url.Error should be transient")
	}
	if !isTransient(fakeTimeoutErr{}) {
		t.Fatalf("a timed-out net.Error should be transient")
	}
	if isTransient(errors.New("boom")) {
		t.Fatalf("a plain error should not be transient")
	}
}

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

func errInsufficientSources() error {
	return &stubError{"insufficient_sources"}
}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }
