package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/nikogura/career-tailor/pkg/config"
	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "career-tailor",
	Short: "Tailor resumes, cover letters and interview briefs to a job description",
	Long: `career-tailor analyzes a job description, selects the most relevant impact
statements from your experience repository, and generates a tailored resume,
cover letter and interview strategy brief.

Uses Claude API for analysis, matching and generation.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal.
		_ = godotenv.Load()
		configureLogging()
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.career-tailor/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

func configureLogging() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if getVerbose() {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.WarnLevel)
}

// loadConfigAndRepository loads the config file and the experience repository it points at.
func loadConfigAndRepository() (cfg config.Config, repo repository.Repository, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, repo, err
	}

	if getVerbose() {
		fmt.Printf("Loading repository from: %s\n", cfg.RepositoryLocation)
	}

	repo, err = repository.Load(cfg.RepositoryLocation)
	if err != nil {
		err = errors.Wrap(err, "failed to load repository")
		return cfg, repo, err
	}

	if getVerbose() {
		fmt.Printf("Loaded %d positions, %d impact statements\n", len(repo.Positions), repo.StatementCount())
	}

	return cfg, repo, err
}

// newClient builds the model client from config.
func newClient(cfg config.Config) (client *llm.Client) {
	gateway := llm.NewClaudeGateway(llm.GatewayOptions{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.GetGenerationModel(),
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.RequestTimeout(),
		Logger:    logrus.StandardLogger(),
	})
	client = llm.NewClient(gateway, logrus.StandardLogger())
	return client
}

// openAnalysisStore returns the configured history store. The returned close
// func must be called when done.
func openAnalysisStore(ctx context.Context, cfg config.Config) (analyses store.AnalysisStore, closeFn func(), err error) {
	closeFn = func() {}

	if cfg.Storage.DatabaseURL != "" {
		var pg *store.PostgresStore
		pg, err = store.ConnectPostgres(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return analyses, closeFn, err
		}
		if getVerbose() {
			fmt.Println("Using PostgreSQL analysis history")
		}
		analyses = pg
		closeFn = pg.Close
		return analyses, closeFn, err
	}

	var fs *store.FileStore
	fs, err = store.NewFileStore(cfg.Storage.HistoryDir)
	if err != nil {
		return analyses, closeFn, err
	}
	if getVerbose() {
		fmt.Printf("Using analysis history at: %s\n", fs.Path())
	}
	analyses = fs

	return analyses, closeFn, err
}
