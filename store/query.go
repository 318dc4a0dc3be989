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
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/penny-vault/pvdash/data"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrEmptySelection = errors.New("no rows match the selection")

	kpiPrinter = message.NewPrinter(language.English)
)

// QueryParams selects a company, an inclusive date interval, and the metric
// columns to chart. Company may be a name or slug. An empty Metrics list
// selects every known metric.
type QueryParams struct {
	Company string
	Start   time.Time
	End     time.Time
	Metrics []string
}

// ChartRow is one charted period: the period end plus the requested metric
// values keyed by metric name.
type ChartRow struct {
	PeriodEnd time.Time          `json:"period_end_date"`
	Values    map[string]float64 `json:"values"`
}

// KPI is one formatted summary card for the latest period in the selection.
type KPI struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// ResultSet is the projection of one query: time-ordered chart rows, the
// filtered table rows in natural order, and the latest-period KPI cards.
type ResultSet struct {
	ChartRows []ChartRow              `json:"chart_rows"`
	TableRows []*data.FinancialRecord `json:"table_rows"`
	KPIs      []KPI                   `json:"kpis"`
}

// Query loads the table if needed and projects it for params.
func (store *Store) Query(ctx context.Context, params QueryParams) (*ResultSet, error) {
	table, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return table.Query(params)
}

// Query filters the table to rows where the company matches and
// Start <= period_end_date <= End, then derives chart rows (ascending by
// period end), table rows (filter order), and KPIs from the latest row. An
// empty filtered set returns ErrEmptySelection; callers surface it as a
// "no data for this selection" condition, not a failure.
func (table *Table) Query(params QueryParams) (*ResultSet, error) {
	company := table.ResolveCompany(params.Company)
	rows, _ := table.byCompany.Get(company)

	filtered := make([]*data.FinancialRecord, 0, len(rows))
	for _, record := range rows {
		if record.PeriodEnd.Before(params.Start) || record.PeriodEnd.After(params.End) {
			continue
		}
		filtered = append(filtered, record)
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: company=%q start=%s end=%s", ErrEmptySelection,
			params.Company, params.Start.Format("2006-01-02"), params.End.Format("2006-01-02"))
	}

	metrics := params.Metrics
	if len(metrics) == 0 {
		for _, metric := range data.Metrics {
			metrics = append(metrics, metric.Key)
		}
	}

	chartRows := make([]*data.FinancialRecord, len(filtered))
	copy(chartRows, filtered)
	sort.SliceStable(chartRows, func(i, j int) bool {
		return chartRows[i].PeriodEnd.Before(chartRows[j].PeriodEnd)
	})

	result := &ResultSet{
		ChartRows: make([]ChartRow, 0, len(chartRows)),
		TableRows: filtered,
		KPIs:      latestKPIs(filtered),
	}

	for _, record := range chartRows {
		row := ChartRow{
			PeriodEnd: record.PeriodEnd,
			Values:    make(map[string]float64, len(metrics)),
		}
		for _, key := range metrics {
			if val, ok := record.MetricValue(key); ok {
				row.Values[key] = val
			}
		}
		result.ChartRows = append(result.ChartRows, row)
	}

	return result, nil
}

// latestKPIs formats the three fixed KPI metrics from the row with the
// greatest period end among the filtered rows.
func latestKPIs(filtered []*data.FinancialRecord) []KPI {
	latest := filtered[0]
	for _, record := range filtered[1:] {
		if record.PeriodEnd.After(latest.PeriodEnd) {
			latest = record
		}
	}

	kpis := make([]KPI, 0, 3)
	for _, metric := range data.Metrics {
		if !metric.KPI {
			continue
		}
		val, _ := latest.MetricValue(metric.Key)
		kpis = append(kpis, KPI{
			Key:   metric.Key,
			Title: metric.KPITitle,
			Value: FormatKPI(val),
		})
	}
	return kpis
}

// FormatKPI renders a metric value as a grouped-thousands integer, e.g.
// 1234567 becomes "1,234,567".
func FormatKPI(val float64) string {
	return kpiPrinter.Sprintf("%.0f", val)
}
