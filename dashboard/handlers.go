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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvdash/data"
	"github.com/penny-vault/pvdash/pkginfo"
	"github.com/penny-vault/pvdash/store"
	"github.com/rs/zerolog"
)

type companiesResponse struct {
	Companies []store.Company `json:"companies"`
	MinDate   time.Time       `json:"min_date"`
	MaxDate   time.Time       `json:"max_date"`
}

type queryResponse struct {
	Company   string                  `json:"company"`
	Empty     bool                    `json:"empty"`
	ChartRows []store.ChartRow        `json:"chart_rows"`
	TableRows []*data.FinancialRecord `json:"table_rows"`
	KPIs      []store.KPI             `json:"kpis"`
	Theme     Theme                   `json:"theme"`
}

type healthResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Records    int       `json:"records,omitempty"`
	Partitions int       `json:"partitions,omitempty"`
	Companies  int       `json:"companies,omitempty"`
	MinDate    time.Time `json:"min_date,omitempty"`
	MaxDate    time.Time `json:"max_date,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// exportRow is the CSV projection of one table row.
type exportRow struct {
	CompanyName     string  `csv:"company_name"`
	PeriodEndDate   string  `csv:"period_end_date"`
	Revenue         float64 `csv:"revenue"`
	GrossProfit     float64 `csv:"gross_profit"`
	ProfitBeforeTax float64 `csv:"profit_before_tax"`
	NetIncomeParent float64 `csv:"net_income_parent"`
}

// GetCompanies handles GET /api/companies: the dropdown options plus the
// date-picker bounds.
func (server *Server) GetCompanies(w http.ResponseWriter, r *http.Request) {
	table, err := server.store.Load(r.Context())
	if err != nil {
		server.loadError(w, r, err)
		return
	}

	minDate, maxDate := table.DateRange()
	render.JSON(w, r, companiesResponse{
		Companies: table.Companies(),
		MinDate:   minDate,
		MaxDate:   maxDate,
	})
}

// GetMetrics handles GET /api/metrics: the fixed metric set with labels.
func (server *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"metrics": data.Metrics})
}

// GetQuery handles GET /api/query. Query parameters: company (name or slug,
// required), start and end (YYYY-MM-DD, default to the table bounds),
// metrics (comma separated), theme (light or dark). An empty selection is a
// 200 with empty=true and placeholder KPI cards, never an error.
func (server *Server) GetQuery(w http.ResponseWriter, r *http.Request) {
	table, err := server.store.Load(r.Context())
	if err != nil {
		server.loadError(w, r, err)
		return
	}

	params, theme, err := server.queryParams(r, table)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	result, err := table.Query(params)
	if errors.Is(err, store.ErrEmptySelection) {
		zerolog.Ctx(r.Context()).Info().
			Str("Company", params.Company).
			Time("Start", params.Start).Time("End", params.End).
			Msg("no rows for selection")

		render.JSON(w, r, queryResponse{
			Company:   params.Company,
			Empty:     true,
			ChartRows: []store.ChartRow{},
			TableRows: []*data.FinancialRecord{},
			KPIs:      placeholderKPIs(),
			Theme:     theme,
		})
		return
	}
	if err != nil {
		server.loadError(w, r, err)
		return
	}

	render.JSON(w, r, queryResponse{
		Company:   table.ResolveCompany(params.Company),
		ChartRows: result.ChartRows,
		TableRows: result.TableRows,
		KPIs:      result.KPIs,
		Theme:     theme,
	})
}

// ExportCSV handles GET /api/export: the filtered table rows as a CSV
// download, mirroring the data table's export button.
func (server *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table, err := server.store.Load(r.Context())
	if err != nil {
		server.loadError(w, r, err)
		return
	}

	params, _, err := server.queryParams(r, table)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	result, err := table.Query(params)
	if errors.Is(err, store.ErrEmptySelection) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "no data for this selection"})
		return
	}
	if err != nil {
		server.loadError(w, r, err)
		return
	}

	rows := make([]*exportRow, 0, len(result.TableRows))
	for _, record := range result.TableRows {
		rows = append(rows, &exportRow{
			CompanyName:     record.CompanyName,
			PeriodEndDate:   record.PeriodEnd.Format("2006-01-02"),
			Revenue:         record.Revenue,
			GrossProfit:     record.GrossProfit,
			ProfitBeforeTax: record.ProfitBeforeTax,
			NetIncomeParent: record.NetIncomeParent,
		})
	}

	fn := fmt.Sprintf("%s-financials.csv", slug.Make(table.ResolveCompany(params.Company)))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fn))

	if err := gocsv.Marshal(&rows, w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("csv export failed")
	}
}

// GetHealth handles GET /api/health.
func (server *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	table, err := server.store.Load(r.Context())
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, healthResponse{
			Status:  "unavailable",
			Version: pkginfo.Version,
			Error:   err.Error(),
		})
		return
	}

	minDate, maxDate := table.DateRange()
	render.JSON(w, r, healthResponse{
		Status:     "healthy",
		Version:    pkginfo.Version,
		Records:    len(table.Records),
		Partitions: table.Partitions,
		Companies:  len(table.Companies()),
		MinDate:    minDate,
		MaxDate:    maxDate,
		LoadedAt:   table.LoadedAt,
	})
}

// GetTheme handles GET /api/theme/{mode}.
func (server *Server) GetTheme(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	if mode != "light" && mode != "dark" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": fmt.Sprintf("unknown theme: %s", mode)})
		return
	}
	render.JSON(w, r, ThemeFor(mode))
}

func (server *Server) queryParams(r *http.Request, table *store.Table) (store.QueryParams, Theme, error) {
	query := r.URL.Query()
	theme := ThemeFor(server.cfg.DefaultTheme)
	if mode := query.Get("theme"); mode != "" {
		theme = ThemeFor(mode)
	}

	company := query.Get("company")
	if company == "" {
		return store.QueryParams{}, theme, errors.New("company is required")
	}

	minDate, maxDate := table.DateRange()
	start, err := parseDate(query.Get("start"), minDate)
	if err != nil {
		return store.QueryParams{}, theme, err
	}

	end, err := parseDate(query.Get("end"), maxDate)
	if err != nil {
		return store.QueryParams{}, theme, err
	}

	var metrics []string
	if raw := query.Get("metrics"); raw != "" {
		metrics = strings.Split(raw, ",")
	}

	return store.QueryParams{
		Company: company,
		Start:   start,
		End:     end,
		Metrics: metrics,
	}, theme, nil
}

func parseDate(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}

	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed.UTC(), nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", raw)
	}
	return parsed.UTC(), nil
}

func placeholderKPIs() []store.KPI {
	kpis := make([]store.KPI, 0, 3)
	for _, metric := range data.Metrics {
		if !metric.KPI {
			continue
		}
		kpis = append(kpis, store.KPI{Key: metric.Key, Title: metric.KPITitle, Value: "--"})
	}
	return kpis
}

func (server *Server) loadError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("table load failed")

	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNoPartitions) {
		status = http.StatusServiceUnavailable
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}
