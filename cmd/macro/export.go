package macro

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			var w io.Writer = cmd.OutOrStdout()
			if exportOutput != "" {
				f, err := os.Create(exportOutput)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := service.Export(s, exportFormat, w); err != nil {
				return err
			}
			if exportOutput != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", exportFormat, exportOutput)
			}
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", service.FormatJSON, "Output format (json or yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
