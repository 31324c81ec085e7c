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

package queue

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process FIFO used by tests and single-process
// deployments; it implements the same Producer/Consumer contract as
// RedisQueue, including the non-blocking-timeout Dequeue shape.
type MemoryQueue struct {
	mu   sync.Mutex
	msgs []Message
	fail bool
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// SetUnavailable makes subsequent Enqueue calls fail with
// ErrQueueUnavailable, to exercise the Orchestrator's publish-failure path.
func (q *MemoryQueue) SetUnavailable(v bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fail = v
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail {
		return ErrQueueUnavailable
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Message, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.msgs) == 0 {
		return Message{}, false, nil
	}
	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, true, nil
}
