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

package job

import (
	"context"
	"errors"
)

// ErrDuplicateIdempotencyKey is returned by Create when the
// (idempotency_key, task_hash) uniqueness constraint is violated.
var ErrDuplicateIdempotencyKey = errors.New("job: duplicate idempotency key for task")

// Store is the durable Job record with atomic state transitions. Get and
// GetByIdempotency signal "not found" with a nil Job and a nil error,
// never a sentinel error — callers branch on the returned pointer.
type Store interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	GetByIdempotency(ctx context.Context, idempotencyKey, taskHash string) (*Job, error)

	// Transition is an atomic compare-and-set: it succeeds iff the job's
	// current status equals expectedFrom AND (expectedFrom, to) is an
	// allowed edge. It MUST be a single conditional update at the storage
	// layer, never a read-then-write.
	Transition(ctx context.Context, jobID string, to, expectedFrom Status) (bool, error)

	// Succeed only modifies a job whose status is Queued or Running.
	Succeed(ctx context.Context, jobID string, result Result) (bool, error)
	// Fail only modifies a job whose status is Queued or Running.
	Fail(ctx context.Context, jobID string, errVal Error) (bool, error)

	SetDecision(ctx context.Context, jobID, agent, reason string) error
	SetProgress(ctx context.Context, jobID string, v float64) error
	IncrementAttempts(ctx context.Context, jobID string, by int) error
}
