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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agentic-pipeline/internal/agent"
	"agentic-pipeline/internal/eventlog"
	"agentic-pipeline/internal/job"
	"agentic-pipeline/internal/llm"
	"agentic-pipeline/internal/queue"
	"agentic-pipeline/internal/search"
	"agentic-pipeline/internal/webfetch"
	"agentic-pipeline/internal/worker"
	"agentic-pipeline/pkg/config"
	applog "agentic-pipeline/pkg/log"
)

func main() {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger, err := applog.NewLogger(&applog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

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

	codeClient := llm.GetClient("openai", cfg.LLM.Code.Model, cfg.LLM.Code.APIKey, cfg.LLM.Code.BaseURL, cfg.LLM.Code.Temperature, cfg.LLM.Code.TimeoutS, cfg.LLM.Code.MaxRetries)
	contentClient := llm.GetClient("openai", cfg.LLM.Content.Model, cfg.LLM.Content.APIKey, cfg.LLM.Content.BaseURL, cfg.LLM.Content.Temperature, cfg.LLM.Content.TimeoutS, cfg.LLM.Content.MaxRetries)
	searchProvider, err := search.NewSerpAPIProvider(cfg.Search.APIKey, cfg.Search.Engine, cfg.Search.TimeoutS)
	if err != nil {
		log.Fatalf("初始化 Search Provider 失败: %v", err)
	}
	fetcher := webfetch.NewHTTPFetcher(cfg.Web.Whitelist, cfg.Web.TimeoutS, cfg.Web.UserAgent)

	registry := agent.NewRegistry(map[agent.Kind]agent.Factory{
		agent.KindCode: func() (agent.Agent, error) {
			return agent.NewCodeAgent(codeClient), nil
		},
		agent.KindContent: func() (agent.Agent, error) {
			return agent.NewContentAgent(contentClient, searchProvider, fetcher), nil
		},
	})

	workerID := cfg.Worker.ID
	if workerID == "" {
		workerID = "worker-" + uuid.New().String()[:8]
	}
	w := worker.New(workerID, jobs, events, q, q, registry, logger, cfg.Worker.Concurrency)
	w.Start(ctx)
	logger.Info("worker started", "id", workerID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()
	w.Stop()
	fmt.Println("worker 已关闭")
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

func newQueue(cfg *config.Config) (*queue.RedisQueue, error) {
	if cfg.Queue.Type != "redis" {
		return nil, fmt.Errorf("worker requires a redis queue, got %q", cfg.Queue.Type)
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
