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
package data

import "strings"

const (
	RevenueKey         = "revenue"
	GrossProfitKey     = "gross_profit"
	ProfitBeforeTaxKey = "profit_before_tax"
	NetIncomeParentKey = "net_income_parent"
)

// Metric describes one selectable numeric column.
type Metric struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	KPI      bool   `json:"kpi"`
	KPITitle string `json:"kpi_title,omitempty"`
}

// Metrics is the fixed set of chartable columns, in display order. The three
// KPI entries are the summary cards shown for the latest reporting period.
var Metrics = []Metric{
	{Key: RevenueKey, Label: "Revenue", KPI: true, KPITitle: "Revenue (Rs '000)"},
	{Key: GrossProfitKey, Label: "Gross Profit", KPI: true, KPITitle: "Gross Profit"},
	{Key: ProfitBeforeTaxKey, Label: "Profit Before Tax"},
	{Key: NetIncomeParentKey, Label: "Net Income Parent", KPI: true, KPITitle: "Net Income"},
}

// KnownMetric reports whether key names one of the fixed metric columns.
func KnownMetric(key string) bool {
	for _, metric := range Metrics {
		if metric.Key == key {
			return true
		}
	}
	return false
}

// MetricLabel converts a metric key into its dropdown label, e.g.
// "net_income_parent" becomes "Net Income Parent".
func MetricLabel(key string) string {
	for _, metric := range Metrics {
		if metric.Key == key {
			return metric.Label
		}
	}

	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
