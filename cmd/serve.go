// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/config"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring/prometheus"
	"github.com/datasektionen/hive/internal/tracing"

	"github.com/datasektionen/hive/pkg/groups"
	"github.com/datasektionen/hive/pkg/integrations"
	"github.com/datasektionen/hive/pkg/permissions"
	"github.com/datasektionen/hive/pkg/storage"
	"github.com/datasektionen/hive/pkg/systems"
	"github.com/datasektionen/hive/pkg/tags"
	"github.com/datasektionen/hive/pkg/tokens"
	"github.com/datasektionen/hive/pkg/web"

	ipool "github.com/datasektionen/hive/internal/pool"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve starts the web server",
	Long:  `Launch the web application, configured through the environment variables declared by config.EnvSpec and the flags below.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve(cmd)
	},
}

func init() {
	serveCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string (overrides DSN)")
	serveCmd.Flags().String("listen-address", "", "address the HTTP server binds to (overrides LISTEN_ADDRESS)")
	serveCmd.Flags().Int("port", 0, "port the HTTP server listens on (overrides PORT)")
	serveCmd.Flags().String("secret-key", "", "hex-encoded secret key (overrides SECRET_KEY)")
	serveCmd.Flags().String("oidc-issuer", "", "OIDC issuer URL (overrides OIDC_ISSUER)")
	serveCmd.Flags().String("oidc-client-id", "", "OIDC client id (overrides OIDC_CLIENT_ID)")
	serveCmd.Flags().String("oidc-client-secret", "", "OIDC client secret (overrides OIDC_CLIENT_SECRET)")
	serveCmd.Flags().String("log-level", "", "log verbosity (overrides LOG_LEVEL)")
	serveCmd.Flags().String("log-file", "", "log file path (overrides LOG_FILE)")

	rootCmd.AddCommand(serveCmd)
}

// applyFlagOverrides lets any explicitly-set CLI flag win over the value
// envconfig sourced from the environment.
func applyFlagOverrides(cmd *cobra.Command, specs *config.EnvSpec) {
	flags := cmd.Flags()

	if v, _ := flags.GetString("dsn"); v != "" {
		specs.DSN = v
	}
	if v, _ := flags.GetString("listen-address"); v != "" {
		specs.ListenAddress = v
	}
	if v, _ := flags.GetInt("port"); v != 0 {
		specs.Port = v
	}
	if v, _ := flags.GetString("secret-key"); v != "" {
		specs.SecretKey = v
	}
	if v, _ := flags.GetString("oidc-issuer"); v != "" {
		specs.OIDCIssuer = v
	}
	if v, _ := flags.GetString("oidc-client-id"); v != "" {
		specs.OIDCClientID = v
	}
	if v, _ := flags.GetString("oidc-client-secret"); v != "" {
		specs.OIDCClientSecret = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		specs.LogLevel = v
	}
	if v, _ := flags.GetString("log-file"); v != "" {
		specs.LogFile = v
	}
}

func serve(cmd *cobra.Command) {

	specs := new(config.EnvSpec)

	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	applyFlagOverrides(cmd, specs)

	logger := logging.NewLogger(specs.LogLevel, specs.LogFile)

	monitor := prometheus.NewMonitor("hive", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	clk := clock.New(specs.Timezone)

	db := storage.NewDBClient(specs.DSN, true, specs.TracingEnabled, tracer, monitor, logger)
	defer db.Close()

	groupsRepo := groups.NewRepository(db, tracer, monitor, logger)
	groupsResolver := groups.NewResolver(groupsRepo, tracer, logger)

	permsRepo := permissions.NewRepository(db, tracer, monitor, logger)
	permsResolver := permissions.NewResolver(permsRepo, groupsResolver, clk, tracer, logger)

	tagsRepo := tags.NewRepository(db, tracer, monitor, logger)
	tagsResolver := tags.NewResolver(tagsRepo, tracer, logger)

	tokensRepo := tokens.NewRepository(db, tracer, monitor, logger)
	systemsRepo := systems.NewRepository(db, tracer, monitor, logger)

	integrationsRepo := integrations.NewRepository(db, tracer, monitor, logger)
	workerPool := ipool.NewWorkerPool(specs.IntegrationWorkers, tracer, monitor, logger)
	runner := integrations.NewRunner(integrationsRepo, workerPool, clk, tracer, logger)

	if err := runner.Reconcile(context.Background()); err != nil {
		logger.Fatalf("unable to reconcile orphaned integration runs, shutting down, err: %v", err)
	}

	router := web.NewRouter(
		groupsResolver,
		groupsRepo,
		permsResolver,
		tagsResolver,
		tagsRepo,
		tokensRepo,
		systemsRepo,
		clk,
		tracer,
		monitor,
		logger,
	)

	logger.Infof("Starting server on %v:%v", specs.ListenAddress, specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%v:%v", specs.ListenAddress, specs.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal.
	<-c

	runner.Cancel()

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline.
	srv.Shutdown(ctx)

	logger.Desugar().Sync()

	logger.Info("Shutting down")
	os.Exit(0)

}
