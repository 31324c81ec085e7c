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

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	JobStore JobStoreConfig `mapstructure:"jobstore"`
	Queue    QueueConfig    `mapstructure:"queue"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Web      WebConfig      `mapstructure:"web"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port    int        `mapstructure:"port"`
	Host    string     `mapstructure:"host"`
	Timeout string     `mapstructure:"timeout"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// WorkerConfig Worker 服务配置
type WorkerConfig struct {
	Concurrency  int    `mapstructure:"concurrency"`   // 并发执行槽位数，<=0 使用默认 2
	PollInterval string `mapstructure:"poll_interval"` // 当前未被读取；BLPOP 阻塞超时由 queue.block_for 决定
	ID           string `mapstructure:"id"`            // Worker 实例标识，留空则自动生成
}

// JobStoreConfig Job Store 配置
type JobStoreConfig struct {
	Type string `mapstructure:"type"` // memory | postgres
	DSN  string `mapstructure:"dsn"`  // Postgres 连接串，type=postgres 时必填
}

// QueueConfig 队列配置（Job 交接）
type QueueConfig struct {
	Type     string `mapstructure:"type"` // memory | redis
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	ListKey  string `mapstructure:"list_key"` // Redis List 键名，空则默认 "agentic:jobs"
	BlockFor string `mapstructure:"block_for"` // BLPOP 阻塞超时，如 "5s"
}

// LLMConfig 按 Agent 分类的 LLM 客户端配置
type LLMConfig struct {
	Code    LLMProviderConfig `mapstructure:"code"`
	Content LLMProviderConfig `mapstructure:"content"`
}

// LLMProviderConfig 单个 LLM 客户端的连接与调用参数
type LLMProviderConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | 兼容 openai 协议的供应商
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"` // 支持 ${ENV_VAR} 占位符
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TimeoutS    int     `mapstructure:"timeout_s"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// SearchConfig Search Provider 配置
type SearchConfig struct {
	Provider string `mapstructure:"provider"` // serpapi
	APIKey   string `mapstructure:"api_key"`
	Engine   string `mapstructure:"engine"` // 默认 duckduckgo
	TimeoutS int    `mapstructure:"timeout_s"`
}

// WebConfig Web Fetcher 配置
type WebConfig struct {
	Whitelist []string `mapstructure:"whitelist"`
	TimeoutS  int      `mapstructure:"timeout_s"`
	UserAgent string   `mapstructure:"user_agent"`
}

// JWTConfig Bearer JWT 校验配置
type JWTConfig struct {
	SigningKey string `mapstructure:"signing_key"` // 支持 ${ENV_VAR} 占位符
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// LoadConfig 从 configPath 加载配置文件，并应用环境变量覆盖
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	resolveEnvPlaceholder(&config.LLM.Code.APIKey)
	resolveEnvPlaceholder(&config.LLM.Content.APIKey)
	resolveEnvPlaceholder(&config.Search.APIKey)
	resolveEnvPlaceholder(&config.JWT.SigningKey)

	return &config, nil
}

// resolveEnvPlaceholder 将形如 "${VAR_NAME}" 的值替换为对应环境变量，未设置时保留原值
func resolveEnvPlaceholder(field *string) {
	if !strings.HasPrefix(*field, "${") || !strings.HasSuffix(*field, "}") {
		return
	}
	envVar := strings.TrimSuffix(strings.TrimPrefix(*field, "${"), "}")
	if val, ok := os.LookupEnv(envVar); ok {
		*field = val
	}
}

// LoadAPIConfig 加载 API 进程配置（仅 configs/api.yaml）
func LoadAPIConfig() (*Config, error) {
	return LoadConfig("configs/api.yaml")
}

// LoadWorkerConfig 加载 Worker 进程配置（仅 configs/worker.yaml）
func LoadWorkerConfig() (*Config, error) {
	return LoadConfig("configs/worker.yaml")
}
