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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue implements Producer and Consumer over a single Redis list:
// RPUSH to publish, BLPOP to consume — at-least-once, FIFO, no broker-side
// idempotency (that contract lives entirely in the Job Store's CAS).
type RedisQueue struct {
	client   *redis.Client
	listKey  string
	blockFor time.Duration
}

// NewRedisQueue builds a queue bound to one Redis list name.
func NewRedisQueue(client *redis.Client, listKey string, blockFor time.Duration) *RedisQueue {
	if blockFor <= 0 {
		blockFor = 5 * time.Second
	}
	return &RedisQueue{client: client, listKey: listKey, blockFor: blockFor}
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	if err := q.client.RPush(ctx, q.listKey, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return nil
}

// Dequeue blocks up to blockFor waiting for a message. The second return
// value is false (with a nil error) on timeout — the caller should loop.
func (q *RedisQueue) Dequeue(ctx context.Context) (Message, bool, error) {
	result, err := q.client.BLPop(ctx, q.blockFor, q.listKey).Result()
	if errors.Is(err, redis.Nil) {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	// BLPOP returns [key, value].
	if len(result) != 2 {
		return Message{}, false, fmt.Errorf("unexpected BLPOP reply shape: %v", result)
	}
	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return Message{}, false, fmt.Errorf("unmarshal queue message: %w", err)
	}
	return msg, true, nil
}
