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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agentic-pipeline/internal/eventlog"
	"agentic-pipeline/internal/httpapi"
	"agentic-pipeline/internal/httpapi/middleware"
	"agentic-pipeline/internal/job"
	"agentic-pipeline/internal/orchestrator"
	"agentic-pipeline/internal/queue"
	"agentic-pipeline/pkg/config"
	applog "agentic-pipeline/pkg/log"
)

func main() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger, err := applog.NewLogger(&applog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	levelVar := &slog.LevelVar{}
	switch cfg.Log.Level {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
	hlog.SetLogger(hertzslog.NewLogger(hertzslog.WithOutput(os.Stdout), hertzslog.WithLevel(levelVar)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs, err := newJobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化 Job Store 失败: %v", err)
	}
	events, err := newEventStore(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化 Event Log 失败: %v", err)
	}
	q, err := newQueue(cfg)
	if err != nil {
		log.Fatalf("初始化队列失败: %v", err)
	}

	orch := orchestrator.New(jobs, events, q, logger)
	handler := httpapi.NewHandler(orch, logger)
	mw := middleware.NewMiddleware()
	r := httpapi.NewRouter(handler, mw, []byte(cfg.JWT.SigningKey))

	addr := ":8080"
	if cfg.API.Port > 0 {
		addr = fmt.Sprintf(":%d", cfg.API.Port)
	}
	h := r.Build(addr)

	go func() {
		logger.Info("api started", "addr", addr)
		h.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭失败: %v", err)
	}
	fmt.Println("api 已关闭")
}

func newJobStore(ctx context.Context, cfg *config.Config) (job.Store, error) {
	if cfg.JobStore.Type == "postgres" {
		return job.NewPgStore(ctx, cfg.JobStore.DSN)
	}
	return job.NewMemoryStore(), nil
}

func newEventStore(ctx context.Context, cfg *config.Config) (eventlog.Store, error) {
	if cfg.JobStore.Type == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.JobStore.DSN)
		if err != nil {
			return nil, err
		}
		return eventlog.NewPgStore(pool), nil
	}
	return eventlog.NewMemoryStore(), nil
}

func newQueue(cfg *config.Config) (queue.Producer, error) {
	if cfg.Queue.Type != "redis" {
		return queue.NewMemoryQueue(), nil
	}
	blockFor := 5 * time.Second
	if cfg.Queue.BlockFor != "" {
		if d, err := time.ParseDuration(cfg.Queue.BlockFor); err == nil {
			blockFor = d
		}
	}
	listKey := cfg.Queue.ListKey
	if listKey == "" {
		listKey = "agentic:jobs"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Queue.Addr,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	})
	return queue.NewRedisQueue(client, listKey, blockFor), nil
}
