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

package eventlog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Event Log.
type MemoryStore struct {
	mu     sync.Mutex
	seq    int64
	byJob  map[string][]Event
}

// NewMemoryStore creates an empty in-memory event log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byJob: make(map[string][]Event)}
}

func (s *MemoryStore) Push(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ev.ID = fmt.Sprintf("evt-%d", s.seq)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	s.byJob[ev.JobID] = append(s.byJob[ev.JobID], ev)
	return nil
}

func (s *MemoryStore) ListByJob(ctx context.Context, jobID string, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := append([]Event(nil), s.byJob[jobID]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
