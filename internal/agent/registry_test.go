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

package agent

import (
	"context"
	"testing"
)

type fakeAgent struct {
	kind Kind
}

func (f *fakeAgent) Kind() Kind { return f.kind }
func (f *fakeAgent) Run(ctx context.Context, task, jobID, requestID string, progressCb ProgressFunc) (any, error) {
	return nil, nil
}

func TestRegistry_Get_ConstructsOnce(t *testing.T) {
	calls := 0
	r := NewRegistry(map[Kind]Factory{
		KindCode: func() (Agent, error) {
			calls++
			return &fakeAgent{kind: KindCode}, nil
		},
	})

	a1, err := r.Get(KindCode)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	a2, err := r.Get(KindCode)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a1 != a2 {
		t.Fatalf("expected memoized instance, got two different instances")
	}
	if calls != 1 {
		t.Fatalf("expected factory to run once, ran %d times", calls)
	}
}

func TestRegistry_Get_UnknownKindFails(t *testing.T) {
	r := NewRegistry(map[Kind]Factory{})
	_, err := r.Get(Kind("unknown"))
	if err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
