package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"movie-pipeline/config"
	"movie-pipeline/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "movie-pipeline",
	Short: "Harvest, clean and analyse the TMDB movie catalog.",
	Long: `movie-pipeline pulls movie metadata from the TMDB catalog, cleans and
transforms it into an analysis table, renders a PDF report and serves an
interactive dashboard over the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		utils.Log.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.movie-pipeline.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("loglevel"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.ReadConfigFile(viper.GetViper(), cfgFile)
}

// loadConfig resolves the configuration and applies the log level.
func loadConfig() *config.Config {
	cfg := config.Load(viper.GetViper())
	utils.SetLogLevel(cfg.LogLevel)
	return cfg
}
