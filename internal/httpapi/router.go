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
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"agentic-pipeline/internal/httpapi/middleware"
)

// Router builds the Hertz engine and registers the agent execute/status
// routes, the way the teacher's router.go builds its own route groups.
type Router struct {
	handler    *Handler
	mw         *middleware.Middleware
	signingKey []byte
}

// NewRouter builds a Router.
func NewRouter(handler *Handler, mw *middleware.Middleware, signingKey []byte) *Router {
	return &Router{handler: handler, mw: mw, signingKey: signingKey}
}

func (r *Router) authChain(handler app.HandlerFunc) []app.HandlerFunc {
	return []app.HandlerFunc{middleware.Auth(r.signingKey), handler}
}

// Build creates the Hertz engine, wires global middleware, and registers
// routes; opts forwards server.WithTracer and similar options.
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	allOpts := append([]config.Option{server.WithHostPorts(addr)}, opts...)
	h := server.Default(allOpts...)

	h.Use(r.mw.AccessLog())
	h.Use(r.mw.CORS())

	api := h.Group("/api/v1")
	api.GET("/health", r.handler.HealthCheck)

	agentGroup := api.Group("/agent")
	{
		agentGroup.POST("/execute", r.authChain(r.handler.Execute)...)
		agentGroup.GET("/jobs/:job_id", r.authChain(r.handler.GetJob)...)
	}

	return h
}
