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

// Package worker dequeues handoff messages, transitions the job, routes
// and runs the agent, and finalizes the result — the H component.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"sync"
	"time"

	"agentic-pipeline/internal/agent"
	"agentic-pipeline/internal/eventlog"
	"agentic-pipeline/internal/job"
	"agentic-pipeline/internal/queue"
	"agentic-pipeline/internal/router"
	apperrors "agentic-pipeline/pkg/errors"
	"agentic-pipeline/pkg/log"
	"agentic-pipeline/pkg/metrics"
)

// Worker runs a single-goroutine poll loop gated by a concurrency limiter
// — the teacher's `limiter chan struct{}` idiom — claiming one message per
// slot and executing it in its own goroutine.
type Worker struct {
	id       string
	jobs     job.Store
	events   eventlog.Store
	consumer queue.Consumer
	producer queue.Producer
	registry *agent.Registry
	logger   *log.Logger

	limiter chan struct{}
	wg      sync.WaitGroup
	stopCh  chan struct{}
}

// New builds a Worker with maxConcurrency execution slots (default 2).
func New(id string, jobs job.Store, events eventlog.Store, consumer queue.Consumer, producer queue.Producer, registry *agent.Registry, logger *log.Logger, maxConcurrency int) *Worker {
	if maxConcurrency <= 0 {
		maxConcurrency = 2
	}
	return &Worker{
		id:       id,
		jobs:     jobs,
		events:   events,
		consumer: consumer,
		producer: producer,
		registry: registry,
		logger:   logger,
		limiter:  make(chan struct{}, maxConcurrency),
		stopCh:   make(chan struct{}),
	}
}

// Start runs the claim loop until ctx is canceled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			case w.limiter <- struct{}{}:
			}

			msg, ok, err := w.consumer.Dequeue(ctx)
			if err != nil {
				w.logger.Warn("dequeue failed", "error", err)
				<-w.limiter
				continue
			}
			if !ok {
				<-w.limiter
				continue
			}

			w.wg.Add(1)
			go func(m queue.Message) {
				defer w.wg.Done()
				defer func() { <-w.limiter }()
				w.HandleJob(ctx, m.JobID, m.RequestID)
			}(msg)
		}
	}()
}

// Stop signals the claim loop to exit and waits for in-flight jobs.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

// HandleJob implements the 9-step per-message flow. It never returns an
// error — every failure is recorded on the job itself, with
// error.retryable set for transient kinds; no job is requeued or retried.
func (w *Worker) HandleJob(ctx context.Context, jobID, requestID string) {
	// 1. Increment attempts.
	_ = w.jobs.IncrementAttempts(ctx, jobID, 1)

	// 2. Claim the job.
	ok, err := w.jobs.Transition(ctx, jobID, job.StatusRunning, job.StatusQueued)
	if err != nil {
		w.logger.Error("transition to running failed", "job_id", jobID, "error", err)
		return
	}
	if !ok {
		eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
			JobID: jobID, RequestID: requestID, Type: eventlog.Error,
			Payload: mustJSON(map[string]string{"stage": "transition", "msg": "state_not_queued_or_already_taken"}),
		})
		return
	}

	start := time.Now()

	// 3. First agent_started.
	eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
		JobID: jobID, RequestID: requestID, Type: eventlog.AgentStarted,
	})

	// 4. Fetch the job to obtain task.
	j, err := w.jobs.Get(ctx, jobID)
	if err != nil || j == nil {
		eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
			JobID: jobID, RequestID: requestID, Type: eventlog.Error,
			Payload: mustJSON(map[string]string{"stage": "fetch", "msg": "job_not_found"}),
		})
		_, _ = w.jobs.Fail(ctx, jobID, job.Error{Code: "job_not_found", Message: "job record missing after claim"})
		return
	}

	// 5. Route.
	decision := router.Decide(j.Task)
	_ = w.jobs.SetDecision(ctx, jobID, decision.Agent, decision.Reason)
	eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
		JobID: jobID, RequestID: requestID, Type: eventlog.RouteDecision,
		Payload: mustJSON(map[string]string{"agent": decision.Agent, "reason": decision.Reason}),
	})

	// 6. Obtain agent instance; second agent_started.
	a, err := w.registry.Get(agent.Kind(decision.Agent))
	if err != nil {
		eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
			JobID: jobID, RequestID: requestID, Type: eventlog.Error,
			Payload: mustJSON(map[string]string{"stage": "registry", "msg": err.Error()}),
		})
		_, _ = w.jobs.Fail(ctx, jobID, job.Error{Code: "unknown_agent", Message: err.Error()})
		return
	}
	eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
		JobID: jobID, RequestID: requestID, Type: eventlog.AgentStarted,
		Payload: mustJSON(map[string]string{"agent": decision.Agent}),
	})

	// 7. Run, tracking fire-and-forget progress/tool_call writes.
	var pending sync.WaitGroup
	progressCb := func(v float64) {
		pending.Add(2)
		go func() {
			defer pending.Done()
			_ = w.jobs.SetProgress(ctx, jobID, v)
		}()
		go func() {
			defer pending.Done()
			eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
				JobID: jobID, RequestID: requestID, Type: eventlog.ToolCall,
				Payload: mustJSON(map[string]float64{"progress": v}),
			})
		}()
	}

	metrics.WorkerBusy.WithLabelValues(w.id).Inc()
	output, runErr := a.Run(ctx, j.Task, jobID, requestID, progressCb)
	metrics.WorkerBusy.WithLabelValues(w.id).Dec()
	metrics.AgentRunDuration.WithLabelValues(decision.Agent).Observe(time.Since(start).Seconds())

	// Await all background writes before proceeding, success or failure.
	pending.Wait()

	if runErr == nil {
		// 8. Success path.
		outputJSON, marshalErr := json.Marshal(output)
		if marshalErr != nil {
			runErr = apperrors.Wrap(marshalErr, "marshal agent output")
		} else {
			succeeded, err := w.jobs.Succeed(ctx, jobID, job.Result{Agent: decision.Agent, Output: outputJSON})
			if err != nil {
				w.logger.Error("succeed failed", "job_id", jobID, "error", err)
				return
			}
			if succeeded {
				eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
					JobID: jobID, RequestID: requestID, Type: eventlog.AgentFinished,
				})
				_ = w.jobs.SetProgress(ctx, jobID, 1.0)
				metrics.JobsTotal.WithLabelValues("succeeded").Inc()
				metrics.JobLatencySeconds.WithLabelValues("succeeded").Observe(time.Since(j.CreatedAt).Seconds())
			} else {
				eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
					JobID: jobID, RequestID: requestID, Type: eventlog.Error,
					Payload: mustJSON(map[string]string{"stage": "succeed", "msg": "state_not_modified"}),
				})
			}
			return
		}
	}

	// 9. Agent (or marshal) error path.
	code, retryable := classifyError(runErr)
	metrics.AgentRunFailTotal.WithLabelValues(decision.Agent, code).Inc()
	_, _ = w.jobs.Fail(ctx, jobID, job.Error{Code: code, Message: runErr.Error(), Retryable: retryable})
	eventlog.PushBestEffort(ctx, w.events, w.logger, eventlog.Event{
		JobID: jobID, RequestID: requestID, Type: eventlog.Error,
		Payload: mustJSON(map[string]string{"stage": "run", "code": code, "message": runErr.Error()}),
	})
	metrics.JobsTotal.WithLabelValues("failed").Inc()
	metrics.JobLatencySeconds.WithLabelValues("failed").Observe(time.Since(j.CreatedAt).Seconds())

	// error.retryable is recorded for observability/operator replay tooling;
	// it does NOT trigger an automatic requeue here. Terminal states are a
	// hard sink (invariant 2) in this CAS-backed store, unlike the
	// Celery-wrapped original where a retry re-enters the task before the
	// write is durable — see DESIGN.md.
}

// classifyError derives the (code, retryable) pair spec §4.H step 9
// requires: prefer a *classifiedError's own code, otherwise
// "agent_run_error"; retryable iff the error is a recognized transient
// kind.
func classifyError(err error) (string, bool) {
	if ce, ok := err.(*classifiedError); ok {
		return ce.code, ce.retryable
	}
	msg := err.Error()
	switch msg {
	case "insufficient_sources", "model_output_sources_not_in_whitelist", "empty_or_invalid_code":
		return msg, false
	}
	return "agent_run_error", isTransient(err)
}

// classifiedError lets an agent attach its own error code, mirroring the
// "prefer an attribute on the exception if present" rule.
type classifiedError struct {
	code      string
	retryable bool
	err       error
}

func (e *classifiedError) Error() string { return e.err.Error() }
func (e *classifiedError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	// net/http transport errors and context.DeadlineExceeded are the only
	// transient kinds this pipeline recognizes.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
