package macro

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir, err := app.ConfigDir()
		if err != nil {
			return err
		}
		apiKey := "(not set)"
		if cfg.USDA.APIKey != "" {
			apiKey = "(set)"
		}
		fatSecret := "(not set)"
		if cfg.FatSecret.ConsumerKey != "" && cfg.FatSecret.ConsumerSecret != "" {
			fatSecret = "(set)"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config dir: %s\n", dir)
		fmt.Fprintf(out, "data.path: %s\n", cfg.Data.Path)
		fmt.Fprintf(out, "data.backend: %s\n", cfg.Data.Backend)
		fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
		fmt.Fprintf(out, "catalog.path: %s\n", cfg.Catalog.Path)
		fmt.Fprintf(out, "usda.api_key: %s\n", apiKey)
		fmt.Fprintf(out, "usda.base_url: %s\n", cfg.USDA.BaseURL)
		fmt.Fprintf(out, "fatsecret.credentials: %s\n", fatSecret)
		fmt.Fprintf(out, "fatsecret.market: %s/%s\n", cfg.FatSecret.Region, cfg.FatSecret.Language)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
