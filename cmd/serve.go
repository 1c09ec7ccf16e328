package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-analyzer/internal/metrics"
	"github.com/spigell/resume-analyzer/internal/server"

	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resume analysis HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default is :5000)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := bootstrap()
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting the resume-analyzer", zap.String("version", version))

	metrics.Init()

	pipeline, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating the analysis pipeline", zap.Error(err),
			zap.String("hint", "set GOOGLE_API_KEY or the 'gemini.api-key-file' key in the configuration file"),
		)
	}

	srv := server.New(server.Config{
		Address:         config.Server.Address,
		CORSOrigins:     config.Server.CORSOrigins,
		MaxBodyBytes:    config.Server.MaxBodyBytes,
		ReadTimeout:     config.Server.ReadTimeout,
		WriteTimeout:    config.Server.WriteTimeout,
		ShutdownTimeout: config.Server.ShutdownTimeout,
	}, pipeline, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "shutdown requested"))
}
