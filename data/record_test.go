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

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromRow(t *testing.T) {
	tests := []struct {
		name    string
		row     map[string]interface{}
		want    *FinancialRecord
		wantErr bool
	}{
		{
			name: "lower-case columns",
			row: map[string]interface{}{
				"company_name":      "Acme Industries",
				"period_end_date":   float64(1682812800000), // 2023-04-30
				"revenue":           float64(100),
				"gross_profit":      float64(40),
				"profit_before_tax": float64(25),
				"net_income_parent": float64(18),
			},
			want: &FinancialRecord{
				CompanyName:     "Acme Industries",
				PeriodEnd:       time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC),
				Revenue:         100,
				GrossProfit:     40,
				ProfitBeforeTax: 25,
				NetIncomeParent: 18,
			},
		},
		{
			name: "reader-mangled column names",
			row: map[string]interface{}{
				"Company_name":    "Acme Industries",
				"Period_end_date": float64(1690761600000), // 2023-07-31
				"Revenue":         float64(150),
			},
			want: &FinancialRecord{
				CompanyName: "Acme Industries",
				PeriodEnd:   time.Date(2023, 7, 31, 0, 0, 0, 0, time.UTC),
				Revenue:     150,
			},
		},
		{
			name: "extra numeric columns are kept",
			row: map[string]interface{}{
				"company_name":    "Acme Industries",
				"period_end_date": float64(1682812800000),
				"Ebitda":          float64(55),
			},
			want: &FinancialRecord{
				CompanyName: "Acme Industries",
				PeriodEnd:   time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC),
				Extra:       map[string]float64{"ebitda": 55},
			},
		},
		{
			name: "missing company name",
			row: map[string]interface{}{
				"period_end_date": float64(1682812800000),
			},
			wantErr: true,
		},
		{
			name: "missing period end",
			row: map[string]interface{}{
				"company_name": "Acme Industries",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := RecordFromRow(tt.row)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingColumn)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, record)
		})
	}
}

func TestMetricValue(t *testing.T) {
	record := &FinancialRecord{
		Revenue:         100,
		GrossProfit:     40,
		ProfitBeforeTax: 25,
		NetIncomeParent: 18,
		Extra:           map[string]float64{"ebitda": 55},
	}

	val, ok := record.MetricValue(RevenueKey)
	assert.True(t, ok)
	assert.Equal(t, float64(100), val)

	val, ok = record.MetricValue("ebitda")
	assert.True(t, ok)
	assert.Equal(t, float64(55), val)

	_, ok = record.MetricValue("unknown_metric")
	assert.False(t, ok)
}

func TestMarshalJSONFlattensExtra(t *testing.T) {
	record := &FinancialRecord{
		CompanyName: "Acme Industries",
		PeriodEnd:   time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC),
		Revenue:     100,
		Extra:       map[string]float64{"ebitda": 55},
	}

	buf, err := json.Marshal(record)
	require.NoError(t, err)

	row := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(buf, &row))

	assert.Equal(t, "Acme Industries", row["company_name"])
	assert.Equal(t, float64(55), row["ebitda"])
	assert.Contains(t, row, "period_end_date")
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "Revenue", MetricLabel(RevenueKey))
	assert.Equal(t, "Net Income Parent", MetricLabel(NetIncomeParentKey))
	assert.Equal(t, "Operating Margin", MetricLabel("operating_margin"))
}

func TestKnownMetric(t *testing.T) {
	assert.True(t, KnownMetric(GrossProfitKey))
	assert.False(t, KnownMetric("ebitda"))
}
