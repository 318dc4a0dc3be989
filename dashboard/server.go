// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package dashboard

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/penny-vault/pvdash/store"
	"github.com/rs/zerolog/log"
)

//go:embed static
var staticFiles embed.FS

// Config holds the HTTP-layer settings.
type Config struct {
	RateLimit    float64 // requests per second; 0 disables the limiter
	DefaultTheme string  // "light" or "dark"
}

// Server exposes the dashboard API and the embedded UI over HTTP.
type Server struct {
	store *store.Store
	cfg   Config
}

// NewServer wires the dashboard against a record store.
func NewServer(recordStore *store.Store, cfg Config) *Server {
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = "light"
	}

	return &Server{
		store: recordStore,
		cfg:   cfg,
	}
}

// Handler returns the routed dashboard handler; the serve command and the
// serverless adapter both sit on top of it.
func (server *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	if server.cfg.RateLimit > 0 {
		r.Use(rateLimiter(server.cfg.RateLimit))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/companies", server.GetCompanies)
		r.Get("/metrics", server.GetMetrics)
		r.Get("/query", server.GetQuery)
		r.Get("/export", server.ExportCSV)
		r.Get("/health", server.GetHealth)
		r.Get("/theme/{mode}", server.GetTheme)
	})

	staticRoot, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Panic().Err(err).Msg("embedded static assets missing")
	}
	r.Handle("/*", http.FileServer(http.FS(staticRoot)))

	return r
}
