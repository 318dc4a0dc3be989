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
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvdash/data"
	"github.com/penny-vault/pvdash/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	records := []*data.FinancialRecord{
		{
			CompanyName: "Acme Industries",
			PeriodEnd:   time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC),
			Revenue:     100, GrossProfit: 40, ProfitBeforeTax: 25, NetIncomeParent: 18,
		},
		{
			CompanyName: "Acme Industries",
			PeriodEnd:   time.Date(2023, 7, 31, 0, 0, 0, 0, time.UTC),
			Revenue:     1234567, GrossProfit: 400000, ProfitBeforeTax: 250000, NetIncomeParent: 180000,
		},
	}
	require.NoError(t, data.WritePartition(filepath.Join(dir, "acme.parquet"), records))

	return NewServer(store.New(store.Config{DataDir: dir}), Config{})
}

func doRequest(t *testing.T, server *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, url, nil))
	return recorder
}

func TestGetCompanies(t *testing.T) {
	server := fixtureServer(t)
	resp := doRequest(t, server, "/api/companies")
	require.Equal(t, http.StatusOK, resp.Code)

	var body companiesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	require.Len(t, body.Companies, 1)
	assert.Equal(t, "Acme Industries", body.Companies[0].Name)
	assert.Equal(t, "acme-industries", body.Companies[0].Slug)
	assert.Equal(t, time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC), body.MinDate)
	assert.Equal(t, time.Date(2023, 7, 31, 0, 0, 0, 0, time.UTC), body.MaxDate)
}

func TestGetMetrics(t *testing.T) {
	server := fixtureServer(t)
	resp := doRequest(t, server, "/api/metrics")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Metrics []data.Metric `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Metrics, 4)
	assert.Equal(t, "Revenue", body.Metrics[0].Label)
}

func TestGetQuery(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/query?company=acme-industries&start=2023-01-01&end=2023-12-31&metrics=revenue&theme=dark")
	require.Equal(t, http.StatusOK, resp.Code)

	var body queryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.False(t, body.Empty)
	assert.Equal(t, "Acme Industries", body.Company)
	require.Len(t, body.ChartRows, 2)
	assert.Contains(t, body.ChartRows[0].Values, "revenue")
	assert.NotContains(t, body.ChartRows[0].Values, "gross_profit")
	assert.Len(t, body.TableRows, 2)

	require.Len(t, body.KPIs, 3)
	assert.Equal(t, "1,234,567", body.KPIs[0].Value)

	assert.Equal(t, "dark", body.Theme.Mode)
	assert.Equal(t, "plotly_dark", body.Theme.ChartTemplate)
}

func TestGetQueryDefaultsToTableBounds(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/query?company=Acme%20Industries")
	require.Equal(t, http.StatusOK, resp.Code)

	var body queryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.TableRows, 2)
	assert.Equal(t, "light", body.Theme.Mode)
}

func TestGetQueryEmptySelection(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/query?company=acme-industries&start=2030-01-01&end=2030-12-31")
	require.Equal(t, http.StatusOK, resp.Code, "an empty selection is not an error")

	var body queryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.True(t, body.Empty)
	assert.Empty(t, body.ChartRows)
	assert.Empty(t, body.TableRows)
	require.Len(t, body.KPIs, 3)
	for _, kpi := range body.KPIs {
		assert.Equal(t, "--", kpi.Value)
	}
}

func TestGetQueryValidation(t *testing.T) {
	server := fixtureServer(t)

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing company", url: "/api/query"},
		{name: "bad start date", url: "/api/query?company=acme-industries&start=not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, server, tt.url)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestExportCSV(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/export?company=acme-industries")
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "acme-industries-financials.csv")

	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Contains(t, lines[0], "company_name")
	assert.Contains(t, lines[0], "period_end_date")
	assert.Contains(t, lines[1], "Acme Industries")
	assert.Contains(t, lines[1], "2023-04-30")
}

func TestExportCSVEmptySelection(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/export?company=acme-industries&start=2030-01-01&end=2030-12-31")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetTheme(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/theme/dark")
	require.Equal(t, http.StatusOK, resp.Code)

	var theme Theme
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &theme))
	assert.Equal(t, "rgb(30, 30, 30)", theme.TableHeader.BackgroundColor)
	assert.Equal(t, "white", theme.TableData.Color)

	resp = doRequest(t, server, "/api/theme/sepia")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetHealth(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 2, body.Records)
	assert.Equal(t, 1, body.Partitions)
}

func TestHealthNoPartitions(t *testing.T) {
	server := NewServer(store.New(store.Config{DataDir: t.TempDir()}), Config{})

	resp := doRequest(t, server, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRateLimiter(t *testing.T) {
	server := fixtureServer(t)
	server.cfg.RateLimit = 1

	handler := server.Handler()

	saw429 := false
	for i := 0; i < 10; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
		if recorder.Code == http.StatusTooManyRequests {
			saw429 = true
		}
	}
	assert.True(t, saw429, "burst beyond the limit should be rejected")
}

func TestRequestIDHeader(t *testing.T) {
	server := fixtureServer(t)

	resp := doRequest(t, server, "/api/metrics")
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}
