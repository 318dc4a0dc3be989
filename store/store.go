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
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvdash/data"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

var (
	ErrNoPartitions = errors.New("no parquet partitions found")
)

// Config holds the loader settings. The data directory is passed in
// explicitly; the store never consults ambient configuration.
type Config struct {
	DataDir string
}

// Store owns the in-memory financial-record table. The table is built at
// most once per process: the first Load (or Query) reads every partition and
// publishes a fully-built table; later calls return the same table without
// touching the filesystem again.
type Store struct {
	cfg  Config
	open func(fn string) (source.ParquetFile, error)

	once    sync.Once
	table   *Table
	loadErr error
}

// Company pairs a company name with its URL-safe slug.
type Company struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Table is the immutable union of all partition rows. No writer exists after
// construction, so readers share it without locking.
type Table struct {
	Records    []*data.FinancialRecord
	Partitions int
	LoadedAt   time.Time

	companies []string
	byCompany *haxmap.Map[string, []*data.FinancialRecord]
	bySlug    *haxmap.Map[string, string]
	minDate   time.Time
	maxDate   time.Time
}

// New creates a store reading partitions from cfg.DataDir.
func New(cfg Config) *Store {
	return &Store{
		cfg: cfg,
		open: func(fn string) (source.ParquetFile, error) {
			return local.NewLocalFileReader(fn)
		},
	}
}

// Load returns the shared table, building it on the first call. Concurrent
// first callers block until the one build finishes and then all observe the
// same table or the same error; a failed load is permanent for the process.
func (store *Store) Load(ctx context.Context) (*Table, error) {
	store.once.Do(func() {
		store.table, store.loadErr = store.loadTable(ctx)
	})
	return store.table, store.loadErr
}

func (store *Store) loadTable(ctx context.Context) (*Table, error) {
	pattern := filepath.Join(store.cfg.DataDir, "*.parquet")
	partitions, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	if len(partitions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPartitions, store.cfg.DataDir)
	}

	startTime := time.Now()
	records := make([]*data.FinancialRecord, 0)

	for _, fn := range partitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fh, err := store.open(fn)
		if err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("cannot open partition")
			return nil, err
		}

		partRecords, err := data.ReadPartition(fh)
		fh.Close()
		if err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("cannot read partition")
			return nil, err
		}

		records = append(records, partRecords...)
	}

	table := newTable(records, len(partitions))

	log.Info().
		Int("NumPartitions", table.Partitions).
		Int("NumRecords", len(table.Records)).
		Int("NumCompanies", len(table.companies)).
		Dur("LoadTime", time.Since(startTime)).
		Str("DataDir", store.cfg.DataDir).
		Msg("loaded partition files")

	return table, nil
}

func newTable(records []*data.FinancialRecord, partitions int) *Table {
	table := &Table{
		Records:    records,
		Partitions: partitions,
		LoadedAt:   time.Now(),
		byCompany:  haxmap.New[string, []*data.FinancialRecord](),
		bySlug:     haxmap.New[string, string](),
	}

	for _, record := range records {
		rows, _ := table.byCompany.Get(record.CompanyName)
		if rows == nil {
			table.companies = append(table.companies, record.CompanyName)
			table.bySlug.Set(slug.Make(record.CompanyName), record.CompanyName)
		}
		table.byCompany.Set(record.CompanyName, append(rows, record))

		if table.minDate.IsZero() || record.PeriodEnd.Before(table.minDate) {
			table.minDate = record.PeriodEnd
		}
		if record.PeriodEnd.After(table.maxDate) {
			table.maxDate = record.PeriodEnd
		}
	}

	sort.Strings(table.companies)
	return table
}

// Companies lists every distinct company in ascending name order.
func (table *Table) Companies() []Company {
	companies := make([]Company, 0, len(table.companies))
	for _, name := range table.companies {
		companies = append(companies, Company{Name: name, Slug: slug.Make(name)})
	}
	return companies
}

// DateRange returns the earliest and latest period end across all records;
// the UI uses these as the date-picker bounds.
func (table *Table) DateRange() (time.Time, time.Time) {
	return table.minDate, table.maxDate
}

// ResolveCompany maps either an exact company name or its slug back to the
// company name. An unrecognized value is returned unchanged and folds into an
// empty selection downstream.
func (table *Table) ResolveCompany(nameOrSlug string) string {
	if _, ok := table.byCompany.Get(nameOrSlug); ok {
		return nameOrSlug
	}
	if name, ok := table.bySlug.Get(nameOrSlug); ok {
		return name
	}
	return nameOrSlug
}
