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
package lambda

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoRuntimeAPI = errors.New("AWS_LAMBDA_RUNTIME_API is not set")
)

// Run polls the Lambda custom-runtime API and dispatches each invocation
// through the handler. It only returns on a runtime-API transport failure or
// context cancellation; the host freezes the process between events.
func Run(ctx context.Context, handler *Handler) error {
	api := os.Getenv("AWS_LAMBDA_RUNTIME_API")
	if api == "" {
		return ErrNoRuntimeAPI
	}

	client := resty.New().SetBaseURL(fmt.Sprintf("http://%s/2018-06-01", api))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := client.R().SetContext(ctx).Get("/runtime/invocation/next")
		if err != nil {
			return err
		}

		requestID := next.Header().Get("Lambda-Runtime-Aws-Request-Id")
		logger := log.With().Str("AwsRequestID", requestID).Logger()

		out, err := handler.Invoke(ctx, next.Body())
		if err != nil {
			logger.Error().Err(err).Msg("invocation failed")
			if _, err := client.R().
				SetBody(map[string]string{"errorMessage": err.Error(), "errorType": "HandlerError"}).
				Post(fmt.Sprintf("/runtime/invocation/%s/error", requestID)); err != nil {
				return err
			}
			continue
		}

		if _, err := client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(out).
			Post(fmt.Sprintf("/runtime/invocation/%s/response", requestID)); err != nil {
			return err
		}
	}
}
