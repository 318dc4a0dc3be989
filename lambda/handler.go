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

// Package lambda adapts the dashboard's HTTP handler to Lambda function-URL
// events. The application itself is unaware of the serverless boundary; each
// event is replayed through the handler and the captured response is encoded
// back into the function-URL shape.
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/goccy/go-json"
)

// FunctionURLRequest is the subset of a Lambda function-URL (payload v2)
// event the dashboard needs.
type FunctionURLRequest struct {
	RawPath         string            `json:"rawPath"`
	RawQueryString  string            `json:"rawQueryString"`
	Headers         map[string]string `json:"headers"`
	Cookies         []string          `json:"cookies"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
	RequestContext  struct {
		HTTP struct {
			Method   string `json:"method"`
			Path     string `json:"path"`
			SourceIP string `json:"sourceIp"`
		} `json:"http"`
	} `json:"requestContext"`
}

// FunctionURLResponse is the payload v2 response shape.
type FunctionURLResponse struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Handler replays function-URL events against an http.Handler.
type Handler struct {
	inner http.Handler
}

// New wraps an http.Handler for invocation from Lambda.
func New(inner http.Handler) *Handler {
	return &Handler{inner: inner}
}

// Invoke decodes one event payload, serves it, and encodes the response.
func (handler *Handler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	var event FunctionURLRequest
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("cannot decode function URL event: %w", err)
	}

	req, err := handler.toRequest(ctx, &event)
	if err != nil {
		return nil, err
	}

	recorder := httptest.NewRecorder()
	handler.inner.ServeHTTP(recorder, req)

	return json.Marshal(toResponse(recorder))
}

func (handler *Handler) toRequest(ctx context.Context, event *FunctionURLRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("cannot decode event body: %w", err)
		}
		body = decoded
	}

	url := event.RawPath
	if url == "" {
		url = "/"
	}
	if event.RawQueryString != "" {
		url += "?" + event.RawQueryString
	}

	method := event.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for key, val := range event.Headers {
		req.Header.Set(key, val)
	}
	for _, cookie := range event.Cookies {
		req.Header.Add("Cookie", cookie)
	}
	req.RemoteAddr = event.RequestContext.HTTP.SourceIP

	return req, nil
}

func toResponse(recorder *httptest.ResponseRecorder) *FunctionURLResponse {
	resp := &FunctionURLResponse{
		StatusCode: recorder.Code,
		Headers:    make(map[string]string, len(recorder.Header())),
	}

	for key, vals := range recorder.Header() {
		resp.Headers[key] = strings.Join(vals, ",")
	}

	body := recorder.Body.Bytes()
	if textualContent(recorder.Header().Get("Content-Type")) {
		resp.Body = string(body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(body)
		resp.IsBase64Encoded = true
	}

	return resp
}

func textualContent(contentType string) bool {
	switch {
	case strings.HasPrefix(contentType, "text/"):
		return true
	case strings.Contains(contentType, "json"):
		return true
	case strings.Contains(contentType, "javascript"):
		return true
	case strings.Contains(contentType, "xml"):
		return true
	}
	return false
}
