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

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentic-pipeline/internal/eventlog"
	"agentic-pipeline/internal/httpapi/middleware"
	"agentic-pipeline/internal/job"
	"agentic-pipeline/internal/orchestrator"
	"agentic-pipeline/internal/queue"
	"agentic-pipeline/pkg/log"
)

var testSigningKey = []byte("test-signing-key")

func signTestToken(t *testing.T, userID string, expired bool) string {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}
	claims := jwt.MapClaims{"user_id": userID, "exp": exp.Unix()}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func buildTestRouter(t *testing.T) (*server.Hertz, *job.MemoryStore) {
	t.Helper()
	logger, err := log.NewLogger(&log.Config{Level: "error", Format: "text"})
	require.NoError(t, err)
	jobs := job.NewMemoryStore()
	events := eventlog.NewMemoryStore()
	q := queue.NewMemoryQueue()
	orch := orchestrator.New(jobs, events, q, logger)
	handler := NewHandler(orch, logger)
	mw := middleware.NewMiddleware()
	r := NewRouter(handler, mw, testSigningKey)
	return r.Build(":0"), jobs
}

func TestExecute_RequiresAuth(t *testing.T) {
	s, _ := buildTestRouter(t)
	body := []byte(`{"task":"write a go function","mode":"async"}`)
	w := ut.PerformRequest(s.Engine, "POST", "/api/v1/agent/execute", &ut.Body{Body: bytes.NewReader(body), Len: len(body)})
	assert.Equal(t, 401, w.Result().StatusCode())
}

func TestExecute_AcceptedWithLocationAndRetryAfter(t *testing.T) {
	s, jobs := buildTestRouter(t)
	token := signTestToken(t, "user-1", false)
	body := []byte(`{"task":"write a go function","mode":"async"}`)
	w := ut.PerformRequest(s.Engine, "POST", "/api/v1/agent/execute", &ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Authorization", Value: "Bearer " + token})

	resp := w.Result()
	assert.Equal(t, 202, resp.StatusCode())
	assert.NotEmpty(t, string(resp.Header.Peek("Location")))
	assert.Equal(t, "2", string(resp.Header.Peek("Retry-After")))
	_ = jobs
}

func TestExecute_ExpiredTokenDistinctFromInvalid(t *testing.T) {
	s, _ := buildTestRouter(t)
	body := []byte(`{"task":"x","mode":"async"}`)

	expired := signTestToken(t, "user-1", true)
	w := ut.PerformRequest(s.Engine, "POST", "/api/v1/agent/execute", &ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Authorization", Value: "Bearer " + expired})
	assert.Equal(t, 401, w.Result().StatusCode())

	w2 := ut.PerformRequest(s.Engine, "POST", "/api/v1/agent/execute", &ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Authorization", Value: "Bearer not-a-jwt"})
	assert.Equal(t, 401, w2.Result().StatusCode())

	var expiredBody, invalidBody map[string]any
	require.NoError(t, json.Unmarshal(w.Result().BodyBytes(), &expiredBody))
	require.NoError(t, json.Unmarshal(w2.Result().BodyBytes(), &invalidBody))
	assert.NotEqual(t, expiredBody["code"], invalidBody["code"])
}

func TestExecute_RejectsSynchronousMode(t *testing.T) {
	s, _ := buildTestRouter(t)
	token := signTestToken(t, "user-1", false)
	body := []byte(`{"task":"write a go function","mode":"sync"}`)
	w := ut.PerformRequest(s.Engine, "POST", "/api/v1/agent/execute", &ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Authorization", Value: "Bearer " + token})
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestGetJob_NotFoundAndForbidden(t *testing.T) {
	s, _ := buildTestRouter(t)
	tokenOwner := signTestToken(t, "user-1", false)

	w := ut.PerformRequest(s.Engine, "GET", "/api/v1/agent/jobs/j_missing", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Authorization", Value: "Bearer " + tokenOwner})
	assert.Equal(t, 404, w.Result().StatusCode())

	body := []byte(`{"task":"write a go function","mode":"async"}`)
	w2 := ut.PerformRequest(s.Engine, "POST", "/api/v1/agent/execute", &ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Authorization", Value: "Bearer " + tokenOwner})
	var accepted acceptedDTO
	require.NoError(t, json.Unmarshal(w2.Result().BodyBytes(), &accepted))

	tokenOther := signTestToken(t, "user-2", false)
	w3 := ut.PerformRequest(s.Engine, "GET", "/api/v1/agent/jobs/"+accepted.JobID, &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Authorization", Value: "Bearer " + tokenOther})
	assert.Equal(t, 403, w3.Result().StatusCode())

	w4 := ut.PerformRequest(s.Engine, "GET", "/api/v1/agent/jobs/"+accepted.JobID, &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Authorization", Value: "Bearer " + tokenOwner})
	assert.Equal(t, 200, w4.Result().StatusCode())
}
