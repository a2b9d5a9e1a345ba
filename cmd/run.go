package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch, clean, transform and report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s := newStage()
		s.logger.Info("=== Movie pipeline starting ===")
		s.logger.Info("Config: pages: %d | rate: %dms | output: %s | store: %s",
			s.cfg.Pages, s.cfg.RateLimitMs, s.cfg.OutputDir, s.cfg.StoreDriver)

		s.logger.Info("Step 1: Fetching data...")
		if err := s.fetch(ctx); err != nil {
			return err
		}
		s.logger.Info("Step 2: Cleaning data...")
		if err := s.clean(); err != nil {
			return err
		}
		s.logger.Info("Step 3: Transforming data...")
		if err := s.transform(); err != nil {
			return err
		}
		s.logger.Info("Step 4: Generating report...")
		if err := s.report(ctx); err != nil {
			return err
		}

		s.logger.Info("=== Pipeline executed successfully ===")
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Harvest the catalog into the raw CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newStage().fetch(context.Background())
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newStage().clean()
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Derive the processed analysis table from the cleaned CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newStage().transform()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the analysis summary and render the PDF report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newStage().report(context.Background())
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, fetchCmd} {
		c.Flags().IntP("pages", "p", 500, "Number of listing pages to request")
		c.PreRun = bindPages
	}
	rootCmd.AddCommand(runCmd, fetchCmd, cleanCmd, transformCmd, reportCmd)
}

// bindPages binds the --pages flag of the command being executed.
func bindPages(cmd *cobra.Command, args []string) {
	viper.BindPFlag("pages", cmd.Flags().Lookup("pages"))
}
