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

// Package eventlog is the append-only per-job observability trail.
package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"agentic-pipeline/pkg/log"
)

// Type is one of the six event kinds the pipeline records.
type Type string

const (
	RequestReceived Type = "request_received"
	RouteDecision   Type = "route_decision"
	AgentStarted    Type = "agent_started"
	ToolCall        Type = "tool_call"
	AgentFinished   Type = "agent_finished"
	Error           Type = "error"
)

// Event is an immutable observability record. Ordering per job_id is by
// CreatedAt ascending; equal timestamps are broken by arrival order at
// the store — consumers must tolerate a "mostly ordered" log.
type Event struct {
	ID        string
	JobID     string
	RequestID string
	Type      Type
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Store is the append-only Event Log. Push itself returns its own error
// (useful for fault-injection tests); callers that must not let a write
// failure affect job state use PushBestEffort instead.
type Store interface {
	Push(ctx context.Context, ev Event) error
	ListByJob(ctx context.Context, jobID string, limit int) ([]Event, error)
}

// PushBestEffort logs and swallows any error from Push. Event Log writes
// MUST NOT cause a job-state rollback — callers (Orchestrator, Worker)
// always go through this helper rather than wrapping Push in a
// transactional boundary of their own.
func PushBestEffort(ctx context.Context, store Store, logger *log.Logger, ev Event) {
	if err := store.Push(ctx, ev); err != nil && logger != nil {
		logger.Warn("event log push failed", "job_id", ev.JobID, "type", ev.Type, "error", err)
	}
}
