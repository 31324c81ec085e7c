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
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a pgx/v5-backed Store. Transition/Succeed/Fail are each a
// single conditional UPDATE; RowsAffected() is the CAS signal, never a
// read-then-write.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore opens a pool against dsn and pings it once before returning.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PgStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

const uniqueViolation = "23505"

func (s *PgStore) Create(ctx context.Context, j *Job) error {
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now

	var idem, webhook any
	if j.IdempotencyKey != "" {
		idem = j.IdempotencyKey
	}
	if j.WebhookURL != "" {
		webhook = j.WebhookURL
	}

	progress := 0.0
	if j.Progress != nil {
		progress = *j.Progress
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, request_id, owner_user_id, task, task_hash, idempotency_key, webhook_url,
		                    status, progress, attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		j.ID, j.RequestID, j.OwnerUserID, j.Task, j.TaskHash, idem, webhook,
		int(j.Status), progress, j.Attempts, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateIdempotencyKey
		}
		return err
	}
	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	var status int
	var idem, webhook, decidedAgent, reason *string
	var result, errVal []byte
	var progress *float64
	err := row.Scan(&j.ID, &j.RequestID, &j.OwnerUserID, &j.Task, &j.TaskHash, &idem, &webhook,
		&status, &decidedAgent, &reason, &result, &errVal, &progress, &j.Attempts, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = Status(status)
	if idem != nil {
		j.IdempotencyKey = *idem
	}
	if webhook != nil {
		j.WebhookURL = *webhook
	}
	if decidedAgent != nil {
		j.DecidedAgent = *decidedAgent
	}
	if reason != nil {
		j.Reason = *reason
	}
	if progress != nil {
		j.Progress = progress
	}
	if len(result) > 0 {
		var r Result
		if err := json.Unmarshal(result, &r); err != nil {
			return nil, err
		}
		j.Result = &r
	}
	if len(errVal) > 0 {
		var e Error
		if err := json.Unmarshal(errVal, &e); err != nil {
			return nil, err
		}
		j.Error = &e
	}
	return &j, nil
}

const selectJobCols = `id, request_id, owner_user_id, task, task_hash, idempotency_key, webhook_url,
	                    status, decided_agent, reason, result, error, progress, attempts, created_at, updated_at`

func (s *PgStore) Get(ctx context.Context, jobID string) (*Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectJobCols+` FROM jobs WHERE id = $1`, jobID)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (s *PgStore) GetByIdempotency(ctx context.Context, idempotencyKey, taskHash string) (*Job, error) {
	if idempotencyKey == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx, `SELECT `+selectJobCols+` FROM jobs WHERE idempotency_key = $1 AND task_hash = $2`,
		idempotencyKey, taskHash)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (s *PgStore) Transition(ctx context.Context, jobID string, to, expectedFrom Status) (bool, error) {
	if !TransitionAllowed(expectedFrom, to) {
		return false, nil
	}
	cmd, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		int(to), time.Now().UTC(), jobID, int(expectedFrom))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (s *PgStore) Succeed(ctx context.Context, jobID string, result Result) (bool, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return false, err
	}
	cmd, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, result = $2, error = NULL, updated_at = $3
		 WHERE id = $4 AND status IN ($5, $6)`,
		int(StatusSucceeded), payload, time.Now().UTC(), jobID, int(StatusQueued), int(StatusRunning))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (s *PgStore) Fail(ctx context.Context, jobID string, errVal Error) (bool, error) {
	payload, err := json.Marshal(errVal)
	if err != nil {
		return false, err
	}
	cmd, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, error = $2, updated_at = $3
		 WHERE id = $4 AND status IN ($5, $6)`,
		int(StatusFailed), payload, time.Now().UTC(), jobID, int(StatusQueued), int(StatusRunning))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (s *PgStore) SetDecision(ctx context.Context, jobID, agent, reason string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET decided_agent = $1, reason = $2, updated_at = $3 WHERE id = $4`,
		agent, reason, time.Now().UTC(), jobID)
	return err
}

func (s *PgStore) SetProgress(ctx context.Context, jobID string, v float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET progress = $1, updated_at = $2 WHERE id = $3`,
		ClampProgress(v), time.Now().UTC(), jobID)
	return err
}

func (s *PgStore) IncrementAttempts(ctx context.Context, jobID string, by int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET attempts = attempts + $1, updated_at = $2 WHERE id = $3`,
		by, time.Now().UTC(), jobID)
	return err
}
