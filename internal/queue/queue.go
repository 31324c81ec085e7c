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
	"errors"
)

// ErrQueueUnavailable is returned when a publish cannot reach the broker.
var ErrQueueUnavailable = errors.New("queue_unavailable")

// Producer publishes execute messages onto the handoff queue.
type Producer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Consumer pulls the next execute message. ok is false with a nil error
// when no message is available: RedisQueue first waits up to its
// configured block time, MemoryQueue returns at once.
type Consumer interface {
	Dequeue(ctx context.Context) (Message, bool, error)
}
