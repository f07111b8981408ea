package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nikogura/career-tailor/pkg/jd"
	"github.com/nikogura/career-tailor/pkg/resume"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var parseCmd = &cobra.Command{
	Use:   "parse [resume-markdown-file]",
	Short: "Parse resume markdown and print its structure as JSON",
	Long: `Parse a markdown resume into its professional summary and positions
(title, company, dates, bullets) and print the result as JSON.

Reads standard input when no file is given. Parsing never fails; text that
does not fit the expected layout is dropped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	var markdown []byte
	if len(args) == 0 {
		var text string
		text, err = jd.ReadAll(os.Stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read resume from stdin")
			return err
		}
		markdown = []byte(text)
	} else {
		markdown, err = os.ReadFile(args[0])
		if err != nil {
			err = errors.Wrapf(err, "failed to read resume: %s", args[0])
			return err
		}
	}

	parsed := resume.Parse(string(markdown))

	var data []byte
	data, err = json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal parsed resume")
		return err
	}

	fmt.Println(string(data))
	return err
}
