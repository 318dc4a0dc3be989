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
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// requestLogger tags each request with a generated id and logs it on
// completion with a per-request contextual logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		logger := log.With().
			Str("RequestID", requestID).
			Str("Method", r.Method).
			Str("Path", r.URL.Path).
			Logger()

		w.Header().Set("X-Request-Id", requestID)

		startTime := time.Now()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		logger.Info().Dur("Elapsed", time.Since(startTime)).Msg("request served")
	})
}

// rateLimiter rejects requests above rps with 429. A single limiter covers
// all clients; the dashboard is a single-tenant tool.
func rateLimiter(rps float64) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps)+1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
