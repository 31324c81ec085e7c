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

package httpapi

import "agentic-pipeline/internal/job"

// executeRequestDTO is the POST /agent/execute request body.
type executeRequestDTO struct {
	Task       string `json:"task"`
	Mode       string `json:"mode"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

// acceptedDTO is the 202 response body.
type acceptedDTO struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// statusDTO is the GET /agent/jobs/{job_id} response body.
type statusDTO struct {
	JobID        string      `json:"job_id"`
	Status       string      `json:"status"`
	DecidedAgent string      `json:"decided_agent,omitempty"`
	Result       *job.Result `json:"result,omitempty"`
	Error        *job.Error  `json:"error,omitempty"`
	Progress     *float64    `json:"progress,omitempty"`
}
