package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nikogura/career-tailor/pkg/config"
	"github.com/nikogura/career-tailor/pkg/jd"
	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/pipeline"
	"github.com/nikogura/career-tailor/pkg/scorer"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var keepMarkdown bool

//nolint:gochecknoglobals // Cobra boilerplate
var jobID string

//nolint:gochecknoglobals // Cobra boilerplate
var renderPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var noSave bool

//nolint:gochecknoglobals // Cobra boilerplate
var tailorCmd = &cobra.Command{
	Use:   "tailor [jd-file-or-url]",
	Short: "Generate a tailored resume, cover letter and strategy brief",
	Long: `Analyze a job description, match it against your experience repository, and
generate a tailored resume, cover letter and interview strategy brief.

The job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)
- Standard input, when no argument is given

All three documents are generated together; if any one fails, nothing is
written or saved.

Example:
  career-tailor tailor jd.txt
  career-tailor tailor https://example.com/jobs/123 --pdf
  pbpaste | career-tailor tailor --job-id req-12345`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTailor,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tailorCmd)
	tailorCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	tailorCmd.Flags().StringVar(&jobID, "job-id", "", "Optional job/req ID to differentiate multiple applications (e.g., 'req-12345')")
	tailorCmd.Flags().BoolVar(&keepMarkdown, "keep-markdown", true, "Keep markdown files after PDF generation")
	tailorCmd.Flags().BoolVar(&renderPDF, "pdf", false, "Render resume and cover letter PDFs with pandoc")
	tailorCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the analysis in history")
}

func runTailor(cmd *cobra.Command, args []string) (err error) {
	cfg, repo, err := loadConfigAndRepository()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), tailorTimeout(cfg))
	defer cancel()

	var jobDescription string
	jobDescription, err = readJobDescription(ctx, args)
	if err != nil {
		return err
	}

	var analyses store.AnalysisStore
	if !noSave {
		var closeStore func()
		analyses, closeStore, err = openAnalysisStore(ctx, cfg)
		if err != nil {
			err = errors.Wrap(err, "failed to open analysis history")
			return err
		}
		defer closeStore()
	}

	progress := &stageProgress{}
	p := pipeline.New(newClient(cfg), repo, analyses, logrus.StandardLogger(), pipeline.Options{
		MinRelevance:                 cfg.Matching.MinRelevance,
		RepairCoverage:               cfg.Matching.RepairCoverage,
		StatementsPerMissingPosition: cfg.Matching.StatementsPerMissingPosition,
		OnStage:                      progress.onStage,
	})

	var result pipeline.Result
	result, err = p.Run(ctx, jobDescription)
	progress.finish(err == nil)
	if err != nil {
		return explainFailure(err)
	}

	logMatchResults(result)
	logFidelity(result.Fidelity)

	var filenames outputFilenames
	filenames, err = writeDocuments(ctx, cfg, repo.Meta, result.Analysis, outputOptions{
		baseDir:      getBaseOutputDir(outputDir, cfg),
		jobID:        jobID,
		renderPDF:    renderPDF,
		keepMarkdown: keepMarkdown,
	})
	if err != nil {
		return err
	}

	printFilenames(filenames)
	if result.Saved {
		fmt.Printf("\nAnalysis saved with id %s\n", result.Analysis.ID)
	}

	fmt.Println("\nTailoring complete!")

	return err
}

// tailorTimeout allows every sequential model call its full timeout.
func tailorTimeout(cfg config.Config) (timeout time.Duration) {
	timeout = 3*cfg.RequestTimeout() + time.Minute
	return timeout
}

// readJobDescription reads the job description from a file or URL argument,
// or from stdin. A failed URL fetch falls back to a pasted description.
func readJobDescription(ctx context.Context, args []string) (jobDescription string, err error) {
	if len(args) == 0 {
		if getVerbose() {
			fmt.Println("Reading job description from stdin...")
		}
		jobDescription, err = jd.ReadAll(os.Stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read job description from stdin")
			return jobDescription, err
		}
		return jobDescription, err
	}

	input := args[0]
	if getVerbose() {
		fmt.Printf("Loading job description from: %s\n", input)
	}

	jobDescription, err = jd.FetchWithContext(ctx, input)
	if err != nil {
		if !jd.IsURL(input) {
			return jobDescription, err
		}

		fmt.Printf("\nWarning: Failed to fetch job description from URL: %v\n", err)
		fmt.Println("This often happens with JavaScript-rendered pages (Lever, Workable, etc.)")
		fmt.Println("\nPlease paste the job description text below.")
		fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
		fmt.Println()

		jobDescription, err = jd.ReadAll(os.Stdin)
		if err != nil {
			err = errors.Wrap(err, "no job description provided")
			return jobDescription, err
		}

		fmt.Printf("\nJob description received (%d characters)\n", len(jobDescription))
		return jobDescription, err
	}

	if getVerbose() {
		fmt.Printf("Job description loaded (%d characters)\n", len(jobDescription))
	}

	return jobDescription, err
}

// explainFailure prints the user-facing message for a stage failure and
// returns the detailed error.
func explainFailure(err error) (wrapped error) {
	wrapped = err

	var invalid *llm.InvalidInputError
	if errors.As(err, &invalid) {
		return wrapped
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		fmt.Println(stageErr.Message())
	}

	var malformed *llm.MalformedResponseError
	if errors.As(err, &malformed) && getVerbose() {
		fmt.Printf("\nModel response could not be used:\n%s\n", malformed.Raw)
	}

	return wrapped
}

func logMatchResults(result pipeline.Result) {
	analysis := result.Analysis.JDAnalysis
	coverage := result.Coverage

	fmt.Printf("Role: %s (%s)", analysis.RoleTitle, analysis.RoleLevel)
	if analysis.Company != "" {
		fmt.Printf(" at %s", analysis.Company)
	}
	fmt.Println()
	fmt.Printf("Matched %d impact statements across %d positions\n", coverage.Total, len(coverage.PositionCounts))

	if !coverage.Complete() {
		if len(coverage.MissingPositions) > 0 {
			fmt.Printf("Warning: no statements matched for: %s\n", strings.Join(coverage.MissingPositions, ", "))
		}
		if len(coverage.UnknownPositions) > 0 {
			fmt.Printf("Warning: model referenced unknown positions: %s\n", strings.Join(coverage.UnknownPositions, ", "))
		}
	}

	if !getVerbose() {
		return
	}

	fmt.Println("Required skills:")
	for _, skill := range analysis.RequiredSkills {
		fmt.Printf("  - %s\n", skill)
	}
	if result.Analysis.MatchSummary != "" {
		fmt.Printf("Match summary: %s\n", result.Analysis.MatchSummary)
	}
}

func logFidelity(report scorer.Report) {
	if report.Passed() && len(report.Violations) == 0 {
		fmt.Println("✓ Every resume fact traces back to your repository")
		return
	}

	fmt.Printf("Fidelity score: %d/100 (anti-fabrication %d, accuracy %d)\n", report.Overall, report.AntiFabrication, report.Accuracy)
	for _, lesson := range scorer.Lessons(report) {
		fmt.Printf("  - %s\n", lesson)
	}

	if !getVerbose() {
		return
	}

	for _, v := range report.Violations {
		fmt.Printf("  [%s] %s: %s\n", v.Severity, v.Rule, v.Detail)
	}
}
