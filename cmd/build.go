package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/nikogura/career-tailor/pkg/config"
	"github.com/nikogura/career-tailor/pkg/jd"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var buildDryRun bool

//nolint:gochecknoglobals // Cobra boilerplate
var buildCmd = &cobra.Command{
	Use:   "build <transcript-file>",
	Short: "Extract a position from a transcript into the pending additions file",
	Long: `Extract a structured position (title, company, dates, impact statements)
from a free-form transcript of you describing a past role.

The position is appended to the pending additions file, never merged into the
repository directly. Review it, then copy it into your repository by hand.

Example:
  career-tailor build interview-notes.txt
  career-tailor build interview-notes.txt --dry-run
  career-tailor build pending`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

//nolint:gochecknoglobals // Cobra boilerplate
var buildPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List positions waiting in the pending additions file",
	Args:  cobra.NoArgs,
	RunE:  runBuildPending,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.AddCommand(buildPendingCmd)
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Print the extracted position without saving it")
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	cfg, repo, err := loadConfigAndRepository()
	if err != nil {
		return err
	}

	var transcript string
	transcript, err = jd.FetchWithContext(ctx, args[0])
	if err != nil {
		err = errors.Wrap(err, "failed to read transcript")
		return err
	}

	var extractSpinner *spinner
	if !getVerbose() {
		extractSpinner = newSpinner("Extracting experience with Claude API...")
		extractSpinner.start()
	} else {
		fmt.Println("Extracting experience with Claude API...")
	}

	var position repository.Position
	position, err = newClient(cfg).ExtractExperience(ctx, transcript)

	if extractSpinner != nil {
		extractSpinner.stopSpinner()
	}

	if err != nil {
		err = errors.Wrap(err, "experience extraction failed")
		return err
	}

	if !buildDryRun {
		var pending *store.PendingStore
		pending, err = store.NewPendingStore(cfg.Storage.PendingPath)
		if err != nil {
			return err
		}

		reserved := make([]string, 0, len(repo.Positions))
		for _, p := range repo.Positions {
			reserved = append(reserved, p.ID)
		}

		position, err = pending.Add(ctx, position, reserved)
		if err != nil {
			err = errors.Wrap(err, "failed to save pending position")
			return err
		}
	}

	var data []byte
	data, err = json.MarshalIndent(position, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal position")
		return err
	}
	fmt.Println(string(data))

	if buildDryRun {
		fmt.Println("\nDry run: position not saved")
		return err
	}

	fmt.Printf("\n✓ Position %s added to %s (%d impact statements)\n", position.ID, cfg.Storage.PendingPath, len(position.ImpactStatements))
	return err
}

func runBuildPending(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	cfg, err := config.LoadStorage(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var pending *store.PendingStore
	pending, err = store.NewPendingStore(cfg.Storage.PendingPath)
	if err != nil {
		return err
	}

	var positions []repository.Position
	positions, err = pending.List(ctx)
	if err != nil {
		return err
	}

	if len(positions) == 0 {
		fmt.Println("No pending positions")
		return err
	}

	for _, p := range positions {
		fmt.Printf("%s  %s at %s (%s, %d impact statements)\n", p.ID, p.Title, p.Company, p.DateRange(), len(p.ImpactStatements))
	}

	return err
}
