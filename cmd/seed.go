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
package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/penny-vault/pvdash/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	seedQuarters int
	seedRand     int64
)

var seedCompanies = []string{
	"Acme Industries", "Blue Ridge Foods", "Cascade Textiles",
	"Delta Chemicals", "Everest Cement",
}

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write sample parquet partitions into the data directory",
	Long: `The seed sub-command generates demonstration data: one parquet partition per
company covering the requested number of quarters. Useful for trying the
dashboard before wiring in a real export pipeline.`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir := viper.GetString("data.dir")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Fatal().Err(err).Str("DataDir", dataDir).Msg("could not create data directory")
		}

		rng := rand.New(rand.NewSource(seedRand))
		quarterEnds := quarterEndDates(seedQuarters)

		for _, company := range seedCompanies {
			records := make([]*data.FinancialRecord, 0, len(quarterEnds))

			revenue := 500_000 + rng.Float64()*2_000_000
			for _, periodEnd := range quarterEnds {
				// random walk so each company trends rather than jitters
				revenue *= 1 + (rng.Float64()-0.45)*0.2
				grossProfit := revenue * (0.25 + rng.Float64()*0.2)
				profitBeforeTax := grossProfit * (0.4 + rng.Float64()*0.3)

				records = append(records, &data.FinancialRecord{
					CompanyName:     company,
					PeriodEnd:       periodEnd,
					Revenue:         float64(int64(revenue)),
					GrossProfit:     float64(int64(grossProfit)),
					ProfitBeforeTax: float64(int64(profitBeforeTax)),
					NetIncomeParent: float64(int64(profitBeforeTax * 0.72)),
				})
			}

			fn := filepath.Join(dataDir, fmt.Sprintf("financials-%s.parquet", slug.Make(company)))
			if err := data.WritePartition(fn, records); err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Msg("could not write partition")
			}
		}

		log.Info().Int("NumCompanies", len(seedCompanies)).Int("NumQuarters", seedQuarters).
			Str("DataDir", dataDir).Msg("sample data written")
	},
}

// quarterEndDates returns the last n calendar-quarter end dates before now,
// oldest first.
func quarterEndDates(n int) []time.Time {
	ends := make([]time.Time, 0, n)

	now := time.Now().UTC()
	year, quarter := now.Year(), (int(now.Month())-1)/3

	for i := 0; i < n; i++ {
		quarter--
		if quarter < 0 {
			quarter = 3
			year--
		}
		endMonth := time.Month(quarter*3 + 3)
		end := time.Date(year, endMonth+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		ends = append(ends, end)
	}

	for i, j := 0, len(ends)-1; i < j; i, j = i+1, j-1 {
		ends[i], ends[j] = ends[j], ends[i]
	}
	return ends
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVarP(&seedQuarters, "quarters", "q", 12, "number of quarters to generate")
	seedCmd.Flags().Int64Var(&seedRand, "rand", 42, "random seed")
}
