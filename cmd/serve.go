package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikogura/career-tailor/pkg/pipeline"
	"github.com/nikogura/career-tailor/pkg/server"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tailoring API over HTTP",
	Long: `Serve the analyze, match, generate, extract and history operations as a
JSON API.

Example:
  career-tailor serve
  career-tailor serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, repo, err := loadConfigAndRepository()
	if err != nil {
		return err
	}

	var analyses store.AnalysisStore
	var closeStore func()
	analyses, closeStore, err = openAnalysisStore(ctx, cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to open analysis history")
		return err
	}
	defer closeStore()

	var pending *store.PendingStore
	pending, err = store.NewPendingStore(cfg.Storage.PendingPath)
	if err != nil {
		return err
	}

	client := newClient(cfg)
	p := pipeline.New(client, repo, analyses, logrus.StandardLogger(), pipeline.Options{
		MinRelevance:                 cfg.Matching.MinRelevance,
		RepairCoverage:               cfg.Matching.RepairCoverage,
		StatementsPerMissingPosition: cfg.Matching.StatementsPerMissingPosition,
	})

	srv := server.New(server.Options{
		Pipeline:  p,
		Extractor: client,
		Analyses:  analyses,
		Pending:   pending,
		Logger:    logrus.StandardLogger(),
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	fmt.Printf("Serving on %s\n", addr)
	err = srv.Run(ctx, addr)
	return err
}
