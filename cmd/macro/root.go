package macro

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataPath string
	backend  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "macro",
	Short:         "macro tracks meals, micronutrients and workouts from your terminal",
	Long:          "macro is a local-first food diary with micronutrient tracking, custom foods and strength training progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Path to the data file or SQLite database")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend (json or sqlite)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
