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

// StyleTokens is one background/foreground color pair.
type StyleTokens struct {
	BackgroundColor string `json:"backgroundColor"`
	Color           string `json:"color"`
}

// Theme carries the style tokens the UI swaps when the dark-mode toggle
// flips: the chart template name plus the table header and body colors.
type Theme struct {
	Mode          string      `json:"mode"`
	ChartTemplate string      `json:"chart_template"`
	TableHeader   StyleTokens `json:"table_header"`
	TableData     StyleTokens `json:"table_data"`
	Stylesheet    string      `json:"stylesheet"`
}

var (
	lightTheme = Theme{
		Mode:          "light",
		ChartTemplate: "plotly_white",
		TableHeader:   StyleTokens{BackgroundColor: "rgb(230, 230, 230)", Color: "#212529"},
		TableData:     StyleTokens{BackgroundColor: "white", Color: "#212529"},
		Stylesheet:    "/light.css",
	}

	darkTheme = Theme{
		Mode:          "dark",
		ChartTemplate: "plotly_dark",
		TableHeader:   StyleTokens{BackgroundColor: "rgb(30, 30, 30)", Color: "white"},
		TableData:     StyleTokens{BackgroundColor: "rgb(50, 50, 50)", Color: "white"},
		Stylesheet:    "/dark.css",
	}
)

// ThemeFor maps a mode flag to its token set; anything other than "dark"
// falls back to the light theme.
func ThemeFor(mode string) Theme {
	if mode == "dark" {
		return darkTheme
	}
	return lightTheme
}
