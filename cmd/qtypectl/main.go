package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-qtype/internal/app"
)

var (
	verbose  bool
	siteFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "qtypectl",
	Short: "Inspect and exercise question type handlers offline",
	Long: `qtypectl runs the registered question type handlers against question and
answer files, without a server. Enablement comes from the site file only.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = app.NewLogger(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&siteFile, "site", os.Getenv("QTYPE_SITE_FILE"), "YAML site file with flags and policies")

	rootCmd.AddCommand(typesCmd, evaluateCmd, sameCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
