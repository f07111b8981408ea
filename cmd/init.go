package cmd

import (
	"fmt"

	"github.com/nikogura/career-tailor/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file at $HOME/.career-tailor/config.json (or --config).

Edit it to set your name, API key and the location of your experience
repository before running other commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		path := getConfigFile()
		if path == "" {
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}

		err = config.InitConfig(path)
		if err != nil {
			return err
		}

		fmt.Printf("Config written to %s\n", path)
		fmt.Println("Edit it to set name, anthropic_api_key and repository_location.")
		return err
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}
