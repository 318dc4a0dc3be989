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
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type dashboardConfig struct {
	Data struct {
		Dir string `toml:"dir"`
	} `toml:"data"`
	Server struct {
		Listen string `toml:"listen"`
	} `toml:"server"`
	Theme struct {
		Default string `toml:"default"`
	} `toml:"theme"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather dashboard configuration and write the config file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := dashboardConfig{}
		cfg.Server.Listen = ":8050"
		cfg.Theme.Default = "light"

		form := huh.NewForm(
			// Where the partition files live
			huh.NewGroup(
				huh.NewInput().
					Title("Directory containing parquet partition files:").
					Value(&cfg.Data.Dir).
					Validate(func(dir string) error {
						if dir == "" {
							return errors.New("data directory is required")
						}
						return nil
					}),
			),

			// How the dashboard is served
			huh.NewGroup(
				huh.NewInput().
					Title("Listen address for the dashboard:").
					Value(&cfg.Server.Listen),

				huh.NewSelect[string]().
					Title("Default theme:").
					Options(
						huh.NewOption("Light", "light"),
						huh.NewOption("Dark", "dark"),
					).
					Value(&cfg.Theme.Default),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering dashboard settings")
		}

		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".pvdash.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving dashboard settings to config file")
		configData, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your dashboard has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
