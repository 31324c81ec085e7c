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

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API/Worker 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		JobsTotal, JobLatencySeconds, JobDuration,
		WorkerBusy, QueueBacklog,
		RouterDecisionsTotal,
		QueuePublishFailTotal, QueuePublishTotal,
		AgentRunDuration, AgentRunFailTotal,
	)
}

// JobsTotal Job 总数（按终态 status）
var JobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agentic_jobs_total",
		Help: "Job 总数（按终态 status）",
	},
	[]string{"status"}, // succeeded | failed | canceled
)

// JobLatencySeconds 从 queued 到终态的耗时（秒）
var JobLatencySeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agentic_job_latency_seconds",
		Help:    "从 queued 到终态的耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"status"},
)

// JobDuration 单次 Job 执行耗时（秒，按 agent 分类）
var JobDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agentic_job_duration_seconds",
		Help:    "单次 Job 执行耗时（秒，按 agent 分类）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"agent"},
)

// WorkerBusy 当前占用的并发槽位数
var WorkerBusy = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "agentic_worker_busy",
		Help: "当前占用的并发槽位数",
	},
	[]string{"worker_id"},
)

// QueueBacklog 队列积压估计（定期采样）
var QueueBacklog = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "agentic_queue_backlog",
		Help: "队列积压估计（定期采样）",
	},
	[]string{"queue"},
)

// RouterDecisionsTotal Router 决策次数（按 agent kind）
var RouterDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agentic_router_decisions_total",
		Help: "Router 决策次数（按 agent kind）",
	},
	[]string{"agent"},
)

// QueuePublishTotal 入队成功次数
var QueuePublishTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agentic_queue_publish_total",
		Help: "入队成功次数",
	},
	[]string{"queue"},
)

// QueuePublishFailTotal 入队失败次数（queue_unavailable）
var QueuePublishFailTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agentic_queue_publish_fail_total",
		Help: "入队失败次数（queue_unavailable）",
	},
	[]string{"queue"},
)

// AgentRunDuration Agent.Run 执行耗时（秒）
var AgentRunDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agentic_agent_run_duration_seconds",
		Help:    "Agent.Run 执行耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"agent"},
)

// AgentRunFailTotal Agent.Run 失败次数（按错误 code）
var AgentRunFailTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agentic_agent_run_fail_total",
		Help: "Agent.Run 失败次数（按错误 code）",
	},
	[]string{"agent", "code"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	mfs, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
