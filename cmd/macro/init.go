package macro

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local data store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			report, err := s.Inspect()
			if err != nil {
				return err
			}
			if !report.Exists {
				if err := s.Save(store.NewDocument()); err != nil {
					return err
				}
			} else if _, err := s.Load(); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s data store at %s\n", cfg.Data.Backend, cfg.Data.Path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
