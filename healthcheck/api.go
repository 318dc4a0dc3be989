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

// Package healthcheck reports dashboard liveness to healthchecks.io. Pings
// are optional; when no ping URL is configured every call is a no-op.
package healthcheck

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

var (
	ErrStatus = errors.New("status code is invalid")
)

// Start signals that the dashboard process is starting up
func Start() error {
	return ping("/start")
}

// Success signals that the dashboard is up and serving
func Success() error {
	return ping("")
}

// Fail signals that the dashboard exited with an error
func Fail() error {
	return ping("/fail")
}

func ping(suffix string) error {
	pingURL := viper.GetString("healthcheck.pingurl")
	if pingURL == "" {
		return nil
	}

	client := resty.New()
	resp, err := client.R().Post(pingURL + suffix)
	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
