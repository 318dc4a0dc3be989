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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrMissingColumn = errors.New("required column missing from partition row")
)

// FinancialRecord is one reported period for a single company. The known
// metric columns are typed fields; any additional numeric columns found in a
// partition are carried in Extra keyed by their lower-cased column name.
type FinancialRecord struct {
	CompanyName     string    `json:"company_name"`
	PeriodEnd       time.Time `json:"period_end_date"`
	Revenue         float64   `json:"revenue"`
	GrossProfit     float64   `json:"gross_profit"`
	ProfitBeforeTax float64   `json:"profit_before_tax"`
	NetIncomeParent float64   `json:"net_income_parent"`

	Extra map[string]float64 `json:"-"`
}

// MetricValue returns the value of the named metric column for this record.
// Unknown names fall through to the Extra column map.
func (record *FinancialRecord) MetricValue(key string) (float64, bool) {
	switch key {
	case RevenueKey:
		return record.Revenue, true
	case GrossProfitKey:
		return record.GrossProfit, true
	case ProfitBeforeTaxKey:
		return record.ProfitBeforeTax, true
	case NetIncomeParentKey:
		return record.NetIncomeParent, true
	}

	val, ok := record.Extra[key]
	return val, ok
}

// MarshalJSON flattens Extra columns into the record object so table rows
// round-trip with every column the partition carried.
func (record *FinancialRecord) MarshalJSON() ([]byte, error) {
	row := make(map[string]interface{}, 6+len(record.Extra))
	for key, val := range record.Extra {
		row[key] = val
	}

	row["company_name"] = record.CompanyName
	row["period_end_date"] = record.PeriodEnd
	row[RevenueKey] = record.Revenue
	row[GrossProfitKey] = record.GrossProfit
	row[ProfitBeforeTaxKey] = record.ProfitBeforeTax
	row[NetIncomeParentKey] = record.NetIncomeParent

	return json.Marshal(row)
}

// RecordFromRow converts a dynamically-read partition row into a typed
// FinancialRecord. Keys are matched case-insensitively because the parquet
// reader exports column names with an upper-cased first letter.
func RecordFromRow(row map[string]interface{}) (*FinancialRecord, error) {
	record := &FinancialRecord{}

	for key, raw := range row {
		if raw == nil {
			continue
		}

		switch strings.ToLower(key) {
		case "company_name":
			name, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: company_name is %T, want string", ErrMissingColumn, raw)
			}
			record.CompanyName = name
		case "period_end_date":
			millis, ok := raw.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: period_end_date is %T, want integer milliseconds", ErrMissingColumn, raw)
			}
			record.PeriodEnd = time.UnixMilli(int64(millis)).UTC()
		case RevenueKey:
			record.Revenue = asFloat(raw)
		case GrossProfitKey:
			record.GrossProfit = asFloat(raw)
		case ProfitBeforeTaxKey:
			record.ProfitBeforeTax = asFloat(raw)
		case NetIncomeParentKey:
			record.NetIncomeParent = asFloat(raw)
		default:
			if val, ok := raw.(float64); ok {
				if record.Extra == nil {
					record.Extra = make(map[string]float64, 1)
				}
				record.Extra[strings.ToLower(key)] = val
			}
		}
	}

	if record.CompanyName == "" {
		return nil, fmt.Errorf("%w: company_name", ErrMissingColumn)
	}

	if record.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period_end_date", ErrMissingColumn)
	}

	return record, nil
}

func asFloat(raw interface{}) float64 {
	val, _ := raw.(float64)
	return val
}
