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

// Package httpapi exposes the agent execute/status surface over Hertz.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"agentic-pipeline/internal/httpapi/middleware"
	"agentic-pipeline/internal/orchestrator"
	"agentic-pipeline/internal/queue"
	apierrors "agentic-pipeline/pkg/errors"
	"agentic-pipeline/pkg/log"
)

// Handler wires the Orchestrator behind the two HTTP operations.
type Handler struct {
	orch   *orchestrator.Orchestrator
	logger *log.Logger
}

// NewHandler builds a Handler.
func NewHandler(orch *orchestrator.Orchestrator, logger *log.Logger) *Handler {
	return &Handler{orch: orch, logger: logger}
}

// HealthCheck is an unauthenticated liveness probe.
func (h *Handler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// Execute handles POST /api/v1/agent/execute.
func (h *Handler) Execute(ctx context.Context, c *app.RequestContext) {
	var req executeRequestDTO
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(consts.StatusBadRequest, apierrors.InvalidCredentials.ToMap())
		return
	}
	req.Task = strings.TrimSpace(req.Task)
	if len([]rune(req.Task)) < 3 {
		c.JSON(consts.StatusBadRequest, map[string]string{"message": "task must be at least 3 characters"})
		return
	}
	if req.Mode != "" && req.Mode != "async" {
		c.JSON(consts.StatusBadRequest, map[string]string{"message": "mode must be \"async\"; synchronous execution is not supported"})
		return
	}

	ownerUserID := middleware.ActorUserID(c)
	idempotencyKey := string(c.GetHeader("Idempotency-Key"))
	requestID := string(c.GetHeader("X-Request-Id"))

	accepted, err := h.orch.CreateAndEnqueue(ctx, orchestrator.ExecuteRequest{
		Task:       req.Task,
		WebhookURL: req.WebhookURL,
	}, ownerUserID, requestID, idempotencyKey)
	if err != nil {
		if errors.Is(err, queue.ErrQueueUnavailable) {
			c.JSON(consts.StatusServiceUnavailable, apierrors.QueueUnavailable.ToMap())
			return
		}
		h.logger.Error("execute failed", "error", err)
		c.JSON(consts.StatusInternalServerError, apierrors.InternalServerError.ToMap())
		return
	}

	c.Header("Location", fmt.Sprintf("/api/v1/jobs/%s", accepted.JobID))
	c.Header("Retry-After", "2")
	c.JSON(consts.StatusAccepted, acceptedDTO{
		JobID:     accepted.JobID,
		Status:    accepted.Status,
		RequestID: accepted.RequestID,
	})
}

// GetJob handles GET /api/v1/agent/jobs/:job_id.
func (h *Handler) GetJob(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	actorUserID := middleware.ActorUserID(c)

	view, err := h.orch.GetStatusOwnerGuard(ctx, jobID, actorUserID)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrNotFound):
			c.JSON(consts.StatusNotFound, apierrors.RecordNotFound.ToMap())
		case errors.Is(err, orchestrator.ErrUnauthorized):
			c.JSON(consts.StatusForbidden, apierrors.UnauthorizedAccess.ToMap())
		default:
			h.logger.Error("get job failed", "job_id", jobID, "error", err)
			c.JSON(consts.StatusInternalServerError, apierrors.InternalServerError.ToMap())
		}
		return
	}

	c.JSON(consts.StatusOK, statusDTO{
		JobID:        view.JobID,
		Status:       view.Status,
		DecidedAgent: view.DecidedAgent,
		Result:       view.Result,
		Error:        view.Error,
		Progress:     view.Progress,
	})
}
