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
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a pgx/v5-backed Event Log: the log_events table from
// spec §6's storage layout, indexed (job_id, ts asc) and (type, ts desc).
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps an existing pool; callers share the pool with job.PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Schema for the log_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS log_events (
    id         TEXT PRIMARY KEY,
    job_id     TEXT NOT NULL,
    request_id TEXT NOT NULL,
    type       TEXT NOT NULL,
    payload    JSONB,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS log_events_job_ts ON log_events (job_id, created_at ASC);
CREATE INDEX IF NOT EXISTS log_events_type_ts ON log_events (type, created_at DESC);
`

func (s *PgStore) Push(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = "evt-" + uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO log_events (id, job_id, request_id, type, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.JobID, ev.RequestID, string(ev.Type), []byte(ev.Payload), ev.CreatedAt)
	return err
}

func (s *PgStore) ListByJob(ctx context.Context, jobID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, request_id, type, payload, created_at FROM log_events
		 WHERE job_id = $1 ORDER BY created_at ASC LIMIT $2`,
		jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var typ string
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.JobID, &ev.RequestID, &typ, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = Type(typ)
		ev.Payload = payload
		events = append(events, ev)
	}
	return events, rows.Err()
}
