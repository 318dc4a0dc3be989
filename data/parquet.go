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
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// PartitionRow is the on-disk schema of one partition row. Dates are stored
// as integer epoch milliseconds and normalized to time.Time at load.
type PartitionRow struct {
	CompanyName     string  `parquet:"name=company_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PeriodEndDate   int64   `parquet:"name=period_end_date, type=INT64"`
	Revenue         float64 `parquet:"name=revenue, type=DOUBLE"`
	GrossProfit     float64 `parquet:"name=gross_profit, type=DOUBLE"`
	ProfitBeforeTax float64 `parquet:"name=profit_before_tax, type=DOUBLE"`
	NetIncomeParent float64 `parquet:"name=net_income_parent, type=DOUBLE"`
}

// WritePartition saves records to a single parquet partition file.
func WritePartition(fn string, records []*FinancialRecord) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(PartitionRow), 4)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("parquet writer creation failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, record := range records {
		row := &PartitionRow{
			CompanyName:     record.CompanyName,
			PeriodEndDate:   record.PeriodEnd.UnixMilli(),
			Revenue:         record.Revenue,
			GrossProfit:     record.GrossProfit,
			ProfitBeforeTax: record.ProfitBeforeTax,
			NetIncomeParent: record.NetIncomeParent,
		}
		if err = pw.Write(row); err != nil {
			log.Error().Err(err).
				Str("CompanyName", record.CompanyName).
				Time("PeriodEnd", record.PeriodEnd).
				Msg("parquet write failed for record")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(records)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}

// ReadPartition reads every row of an open partition. The reader is built
// from the file footer rather than a fixed struct so that columns beyond the
// known metric set survive into each record's Extra map.
func ReadPartition(fh source.ParquetFile) ([]*FinancialRecord, error) {
	pr, err := reader.NewParquetReader(fh, nil, 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows, err := pr.ReadByNumber(num)
	if err != nil {
		return nil, err
	}

	records := make([]*FinancialRecord, 0, len(rows))
	for _, raw := range rows {
		buf, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{})
		if err := json.Unmarshal(buf, &row); err != nil {
			return nil, err
		}

		record, err := RecordFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
