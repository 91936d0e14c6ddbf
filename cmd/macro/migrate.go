package macro

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var migrateApply bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Report pending data migrations (use --apply to persist them)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			report, err := s.Inspect()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !report.Exists {
				fmt.Fprintln(out, "No data yet; run `macro init` to create it")
				return nil
			}
			fmt.Fprintf(out, "Stored schema: v%d (current v%d)\n", report.StoredVersion, store.CurrentSchemaVersion)
			if len(report.Pending) == 0 {
				fmt.Fprintln(out, "Pending steps: none")
			} else {
				fmt.Fprintf(out, "Pending steps: %s\n", strings.Join(report.Pending, ", "))
			}
			if !report.WouldWrite {
				fmt.Fprintln(out, "Data is up to date")
				return nil
			}
			if !migrateApply {
				fmt.Fprintln(out, "Data would be rewritten; run with --apply to persist")
				return nil
			}
			if _, err := s.Load(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Migrated data")
			return nil
		})
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateApply, "apply", false, "Persist the migrated document")
	rootCmd.AddCommand(migrateCmd)
}
