package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"movie-pipeline/dashboard"
	"movie-pipeline/utils"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the interactive dashboard over the processed table",
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("dashboard_addr", cmd.Flags().Lookup("addr"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		logger := utils.NewLogger()

		ctx, err := dashboard.LoadContext(cfg.ProcessedPath(), logger)
		if err != nil {
			return err
		}
		engine := dashboard.NewEngine(ctx, logger)
		return dashboard.NewServer(engine, logger).Start(cfg.DashboardAddr)
	},
}

func init() {
	dashboardCmd.Flags().String("addr", ":8050", "Address the dashboard listens on")
	rootCmd.AddCommand(dashboardCmd)
}
