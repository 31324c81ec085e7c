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

// Package orchestrator implements admission, idempotency, and enqueue for
// incoming task requests, plus the owner-guarded status read.
package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"

	"agentic-pipeline/internal/eventlog"
	"agentic-pipeline/internal/job"
	"agentic-pipeline/internal/queue"
	apperrors "agentic-pipeline/pkg/errors"
	"agentic-pipeline/pkg/log"
)

// ErrNotFound and ErrUnauthorized are returned by GetStatusOwnerGuard.
var (
	ErrNotFound    = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
)

// ExecuteRequest is the admitted payload, pre-validation having already
// trimmed and length-checked Task at the HTTP boundary.
type ExecuteRequest struct {
	Task       string
	WebhookURL string
}

// Accepted is the admission result returned to the caller.
type Accepted struct {
	JobID     string
	RequestID string
	Status    string
}

// Orchestrator wires the Job Store, Event Log, and Queue Producer behind
// the create/enqueue and status-read operations.
type Orchestrator struct {
	jobs     job.Store
	events   eventlog.Store
	producer queue.Producer
	logger   *log.Logger
}

// New builds an Orchestrator from its three collaborators.
func New(jobs job.Store, events eventlog.Store, producer queue.Producer, logger *log.Logger) *Orchestrator {
	return &Orchestrator{jobs: jobs, events: events, producer: producer, logger: logger}
}

// TaskHash normalizes task (lowercased, whitespace-collapsed) and returns
// its SHA-256 hex digest — the dedup key's second half.
func TaskHash(task string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(task)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func newJobID() string {
	return "j_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func newRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// CreateAndEnqueue admits a task: dedups by idempotency key, persists a
// queued Job, logs request_received, and enqueues — or fails the job and
// returns ErrQueueUnavailable if the publish itself fails.
func (o *Orchestrator) CreateAndEnqueue(ctx context.Context, req ExecuteRequest, ownerUserID, httpRequestID, idempotencyKey string) (Accepted, error) {
	taskHash := TaskHash(req.Task)

	if idempotencyKey != "" {
		existing, err := o.jobs.GetByIdempotency(ctx, idempotencyKey, taskHash)
		if err != nil {
			return Accepted{}, apperrors.Wrap(err, "lookup by idempotency")
		}
		if existing != nil {
			return Accepted{JobID: existing.ID, RequestID: existing.RequestID, Status: existing.Status.String()}, nil
		}
	}

	jobID := newJobID()
	requestID := httpRequestID
	if requestID == "" {
		requestID = newRequestID()
	}

	zero := 0.0
	j := &job.Job{
		ID:             jobID,
		RequestID:      requestID,
		OwnerUserID:    ownerUserID,
		Task:           req.Task,
		TaskHash:       taskHash,
		IdempotencyKey: idempotencyKey,
		WebhookURL:     req.WebhookURL,
		Status:         job.StatusQueued,
		Progress:       &zero,
	}
	if err := o.jobs.Create(ctx, j); err != nil {
		return Accepted{}, apperrors.Wrap(err, "create job")
	}

	eventlog.PushBestEffort(ctx, o.events, o.logger, eventlog.Event{
		JobID:     jobID,
		RequestID: requestID,
		Type:      eventlog.RequestReceived,
	})

	if err := o.producer.Enqueue(ctx, queue.Message{JobID: jobID, RequestID: requestID, OwnerUserID: ownerUserID}); err != nil {
		eventlog.PushBestEffort(ctx, o.events, o.logger, eventlog.Event{
			JobID:     jobID,
			RequestID: requestID,
			Type:      eventlog.Error,
		})
		_, _ = o.jobs.Fail(ctx, jobID, job.Error{
			Code:      "queue_unavailable",
			Message:   "queue publish failed",
			Retryable: true,
		})
		return Accepted{}, queue.ErrQueueUnavailable
	}

	return Accepted{JobID: jobID, RequestID: requestID, Status: job.StatusQueued.String()}, nil
}

// StatusView is the projected status DTO.
type StatusView struct {
	JobID        string
	Status       string
	DecidedAgent string
	Result       *job.Result
	Error        *job.Error
	Progress     *float64
}

// GetStatusOwnerGuard fetches a job, enforcing that only its owner (or an
// unowned legacy job) may read it.
func (o *Orchestrator) GetStatusOwnerGuard(ctx context.Context, jobID, actorUserID string) (StatusView, error) {
	j, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		return StatusView{}, apperrors.Wrap(err, "get job")
	}
	if j == nil {
		return StatusView{}, ErrNotFound
	}
	if j.OwnerUserID != "" && j.OwnerUserID != actorUserID {
		return StatusView{}, ErrUnauthorized
	}
	return StatusView{
		JobID:        j.ID,
		Status:       j.Status.String(),
		DecidedAgent: j.DecidedAgent,
		Result:       j.Result,
		Error:        j.Error,
		Progress:     j.Progress,
	}, nil
}
