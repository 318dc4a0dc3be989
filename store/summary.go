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
	"fmt"
	"strings"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the loaded table in markdown
func (table *Table) Summary() (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# Financial Dashboard Data\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Partition Files: %d\n", table.Partitions)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Total Records: %d\n", len(table.Records))); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Companies: %d\n", len(table.companies))); err != nil {
		return "", err
	}

	minDate, maxDate := table.DateRange()
	if _, err := builder.WriteString(fmt.Sprintf("  * Period Range: %s - %s\n\n", minDate.Format("Jan 2006"), maxDate.Format("Jan 2006"))); err != nil {
		return "", err
	}

	age := timeago.English.Format(table.LoadedAt)
	if _, err := builder.WriteString(fmt.Sprintf("Loaded: %s (%s)\n\n", age, table.LoadedAt.Local().Format("01/02/2006 15:04"))); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Companies\n\n"); err != nil {
		return "", err
	}

	for _, company := range table.Companies() {
		rows, _ := table.byCompany.Get(company.Name)
		if _, err := builder.WriteString(p.Sprintf("  * %s (%d periods) [%s]\n", company.Name, len(rows), company.Slug)); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
