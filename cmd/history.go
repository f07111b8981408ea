package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/nikogura/career-tailor/pkg/config"
	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var showDocument string

//nolint:gochecknoglobals // Cobra boilerplate
var historyOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var historyPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show, delete and re-render saved analyses",
}

//nolint:gochecknoglobals // Cobra boilerplate
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

//nolint:gochecknoglobals // Cobra boilerplate
var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved analysis as JSON, or one of its documents",
	Long: `Print a saved analysis.

Without --document the full record is printed as JSON. With --document one of
resume, cover_letter, strategy_brief or jd prints just that text.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

//nolint:gochecknoglobals // Cobra boilerplate
var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

//nolint:gochecknoglobals // Cobra boilerplate
var historyRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Write the documents of a saved analysis to the output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRender,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyRenderCmd)

	historyShowCmd.Flags().StringVar(&showDocument, "document", "", "Print only this document: resume, cover_letter, strategy_brief or jd")
	historyRenderCmd.Flags().StringVar(&historyOutputDir, "output-dir", "", "Output directory (default from config)")
	historyRenderCmd.Flags().BoolVar(&historyPDF, "pdf", false, "Render resume and cover letter PDFs with pandoc")
}

// withHistory loads config and opens the history store for fn.
func withHistory(ctx context.Context, fn func(cfg config.Config, analyses store.AnalysisStore) error) (err error) {
	var cfg config.Config
	cfg, err = config.LoadStorage(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
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

	err = fn(cfg, analyses)
	return err
}

func runHistoryList(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	err = withHistory(ctx, func(cfg config.Config, analyses store.AnalysisStore) (listErr error) {
		var records []store.Analysis
		records, listErr = analyses.List(ctx)
		if listErr != nil {
			return listErr
		}

		if len(records) == 0 {
			fmt.Println("No saved analyses")
			return listErr
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tCOMPANY\tROLE\tMATCHED")
		for _, a := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.Date.Local().Format("2006-01-02 15:04"), a.Company, a.JobTitle, len(a.MatchedBlocks))
		}
		listErr = w.Flush()
		return listErr
	})
	return err
}

func runHistoryShow(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	err = withHistory(ctx, func(cfg config.Config, analyses store.AnalysisStore) (showErr error) {
		var analysis store.Analysis
		analysis, showErr = store.Find(ctx, analyses, args[0])
		if showErr != nil {
			return showErr
		}

		switch showDocument {
		case "":
			var data []byte
			data, showErr = json.MarshalIndent(analysis, "", "  ")
			if showErr != nil {
				showErr = errors.Wrap(showErr, "failed to marshal analysis")
				return showErr
			}
			fmt.Println(string(data))
		case "jd":
			fmt.Println(analysis.JobDescription)
		default:
			var docType llm.DocumentType
			docType, showErr = llm.ParseDocumentType(showDocument)
			if showErr != nil {
				return showErr
			}
			var text string
			text, showErr = analysis.Document(docType)
			if showErr != nil {
				return showErr
			}
			fmt.Println(text)
		}

		return showErr
	})
	return err
}

func runHistoryDelete(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	err = withHistory(ctx, func(cfg config.Config, analyses store.AnalysisStore) (deleteErr error) {
		deleteErr = analyses.Delete(ctx, args[0])
		if deleteErr != nil {
			return deleteErr
		}
		fmt.Printf("Deleted analysis %s\n", args[0])
		return deleteErr
	})
	return err
}

func runHistoryRender(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

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

	var analysis store.Analysis
	analysis, err = store.Find(ctx, analyses, args[0])
	if err != nil {
		return err
	}

	var filenames outputFilenames
	filenames, err = writeDocuments(ctx, cfg, repo.Meta, analysis, outputOptions{
		baseDir:      getBaseOutputDir(historyOutputDir, cfg),
		renderPDF:    historyPDF,
		keepMarkdown: true,
	})
	if err != nil {
		return err
	}

	printFilenames(filenames)
	return err
}
