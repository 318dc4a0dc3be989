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
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/penny-vault/pvdash/dashboard"
	"github.com/penny-vault/pvdash/healthcheck"
	"github.com/penny-vault/pvdash/lambda"
	"github.com/penny-vault/pvdash/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var lambdaMode bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the financial dashboard",
	Long: `The serve sub-command starts the dashboard. By default it listens on a local
address; with --lambda it instead polls the Lambda custom-runtime API and
answers function-URL events. Partition files are loaded on the first request
and cached for the lifetime of the process.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		recordStore := store.New(store.Config{DataDir: viper.GetString("data.dir")})

		// warm the table before accepting traffic; missing partitions are a
		// startup failure, not a per-request one
		if err := healthcheck.Start(); err != nil {
			log.Warn().Err(err).Msg("healthcheck start ping failed")
		}

		if _, err := recordStore.Load(ctx); err != nil {
			if pingErr := healthcheck.Fail(); pingErr != nil {
				log.Warn().Err(pingErr).Msg("healthcheck fail ping failed")
			}
			log.Fatal().Err(err).Str("DataDir", viper.GetString("data.dir")).Msg("could not load partition files")
		}

		server := dashboard.NewServer(recordStore, dashboard.Config{
			RateLimit:    viper.GetFloat64("server.rate_limit"),
			DefaultTheme: viper.GetString("theme.default"),
		})

		if err := healthcheck.Success(); err != nil {
			log.Warn().Err(err).Msg("healthcheck success ping failed")
		}

		if lambdaMode {
			if err := lambda.Run(ctx, lambda.New(server.Handler())); err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal().Err(err).Msg("lambda runtime loop failed")
			}
			return
		}

		httpServer := &http.Server{
			Addr:              viper.GetString("server.listen"),
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		}()

		log.Info().Str("Listen", httpServer.Addr).Msg("dashboard listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("dashboard server failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&lambdaMode, "lambda", false, "answer Lambda function-URL events instead of listening")
	serveCmd.Flags().String("listen", ":8050", "listen address")
	if err := viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for listen failed")
	}

	serveCmd.Flags().Float64("rateLimit", 0, "max requests per second (0 disables)")
	if err := viper.BindPFlag("server.rate_limit", serveCmd.Flags().Lookup("rateLimit")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for rateLimit failed")
	}
}
