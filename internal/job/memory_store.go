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
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store. Every mutation holds
// the lock for the full read-check-write span so Transition/Succeed/Fail
// are genuine compare-and-sets, not read-then-write races.
type MemoryStore struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	idemKeys map[string]string // idempotencyKey+"|"+taskHash -> jobID
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:     make(map[string]*Job),
		idemKeys: make(map[string]string),
	}
}

func idemIndexKey(idempotencyKey, taskHash string) string {
	return idempotencyKey + "|" + taskHash
}

func (s *MemoryStore) Create(ctx context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.IdempotencyKey != "" {
		key := idemIndexKey(j.IdempotencyKey, j.TaskHash)
		if _, exists := s.idemKeys[key]; exists {
			return ErrDuplicateIdempotencyKey
		}
	}

	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now

	cp := *j
	s.jobs[j.ID] = &cp
	if j.IdempotencyKey != "" {
		s.idemKeys[idemIndexKey(j.IdempotencyKey, j.TaskHash)] = j.ID
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (s *MemoryStore) GetByIdempotency(ctx context.Context, idempotencyKey, taskHash string) (*Job, error) {
	if idempotencyKey == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.idemKeys[idemIndexKey(idempotencyKey, taskHash)]
	if !ok {
		return nil, nil
	}
	j := s.jobs[id]
	if j == nil {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (s *MemoryStore) Transition(ctx context.Context, jobID string, to, expectedFrom Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return false, nil
	}
	if j.Status != expectedFrom || !TransitionAllowed(expectedFrom, to) {
		return false, nil
	}
	j.Status = to
	j.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) Succeed(ctx context.Context, jobID string, result Result) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return false, nil
	}
	if j.Status != StatusQueued && j.Status != StatusRunning {
		return false, nil
	}
	r := result
	j.Status = StatusSucceeded
	j.Result = &r
	j.Error = nil
	j.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) Fail(ctx context.Context, jobID string, errVal Error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return false, nil
	}
	if j.Status != StatusQueued && j.Status != StatusRunning {
		return false, nil
	}
	e := errVal
	j.Status = StatusFailed
	j.Error = &e
	j.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) SetDecision(ctx context.Context, jobID, agent, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	j.DecidedAgent = agent
	j.Reason = reason
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetProgress(ctx context.Context, jobID string, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	clamped := ClampProgress(v)
	j.Progress = &clamped
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) IncrementAttempts(ctx context.Context, jobID string, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	j.Attempts += by
	j.UpdatedAt = time.Now().UTC()
	return nil
}
