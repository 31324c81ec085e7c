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

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	model              string
	apiKey             string
	baseURL            string
	defaultTemperature float64
	client             *resty.Client
}

// NewOpenAIClient builds a client bound to baseURL (empty defaults to
// api.openai.com/v1), with a timeout derived from timeoutS and a retry
// count derived from maxRetries (<=0 defaults to 3). defaultTemperature
// is used for calls whose GenerateOptions.Temperature is unset.
func NewOpenAIClient(model, apiKey, baseURL string, defaultTemperature float64, timeoutS, maxRetries int) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeoutS <= 0 {
		timeoutS = 30
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	c := resty.New()
	c.SetTimeout(time.Duration(timeoutS) * time.Second)
	c.SetRetryCount(maxRetries)
	c.SetRetryWaitTime(1 * time.Second)
	c.SetRetryMaxWaitTime(5 * time.Second)
	return &OpenAIClient{model: model, apiKey: apiKey, baseURL: baseURL, defaultTemperature: defaultTemperature, client: c}
}

func (c *OpenAIClient) Model() string    { return c.model }
func (c *OpenAIClient) Provider() string { return "openai" }

func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts GenerateOptions) (string, error) {
	wire := make([]map[string]string, len(messages))
	for i, m := range messages {
		wire[i] = map[string]string{"role": m.Role, "content": m.Content}
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.defaultTemperature
	}
	body := map[string]any{
		"model":       c.model,
		"messages":    wire,
		"temperature": temperature,
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(body).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("llm chat request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("llm chat returned %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("parsing llm response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
