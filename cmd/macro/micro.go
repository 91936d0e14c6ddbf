package macro

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var microCmd = &cobra.Command{
	Use:   "micro",
	Short: "Track micronutrients from meals and supplements",
}

var (
	microDate     string
	microNutrient string
	microLabel    string
	microAmount   string
	microUnit     string
	microSource   string
	microNotes    string
	microMealID   string
	microKind     string
	microAll      bool
)

var microAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a micronutrient intake",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := service.ParseAmount(microAmount)
		if err != nil {
			return err
		}
		in := service.MicroInput{
			Date:        dateOrToday(microDate),
			Nutrient:    microNutrient,
			Label:       microLabel,
			Amount:      amount,
			Unit:        microUnit,
			Source:      microSource,
			Notes:       microNotes,
			MealEntryID: microMealID,
			Kind:        microKind,
		}
		return withStore(cmd, func(s *store.Store) error {
			rec, err := service.NewMicros(s).Add(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s record %s (%s %g %s)\n", rec.Kind, rec.EntryID, rec.Label, rec.Amount, rec.Unit)
			return nil
		})
	},
}

var microListCmd = &cobra.Command{
	Use:   "list",
	Short: "List micronutrient records",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := dateOrToday(microDate)
		if microAll {
			date = ""
		}
		return withStore(cmd, func(s *store.Store) error {
			records, err := service.NewMicros(s).List(date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tDATE\tKIND\tNUTRIENT\tLABEL\tAMOUNT\tUNIT\tMEAL")
			for _, r := range records {
				meal := "-"
				if r.MealEntryID != nil {
					meal = *r.MealEntryID
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%g\t%s\t%s\n", r.EntryID, r.Date, r.Kind, r.Nutrient, r.Label, r.Amount, r.Unit, meal)
			}
			return nil
		})
	},
}

var microUpdateCmd = &cobra.Command{
	Use:   "update <record-id>",
	Short: "Update a micronutrient record, moving it between meals or to supplements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch service.MicroPatch
		flags := cmd.Flags()
		if flags.Changed("amount") {
			amount, err := service.ParseAmount(microAmount)
			if err != nil {
				return err
			}
			patch.Amount = &amount
		}
		for name, field := range map[string]**string{
			"nutrient": &patch.Nutrient,
			"label":    &patch.Label,
			"unit":     &patch.Unit,
			"source":   &patch.Source,
			"notes":    &patch.Notes,
			"date":     &patch.Date,
			"meal":     &patch.MealEntryID,
			"kind":     &patch.Kind,
		} {
			if flags.Changed(name) {
				v, err := flags.GetString(name)
				if err != nil {
					return err
				}
				*field = &v
			}
		}
		return withStore(cmd, func(s *store.Store) error {
			ok, err := service.NewMicros(s).Update(args[0], patch)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("micronutrient record %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated micronutrient record %s\n", args[0])
			return nil
		})
	},
}

var microDeleteCmd = &cobra.Command{
	Use:   "delete <record-id>",
	Short: "Delete a micronutrient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			ok, err := service.NewMicros(s).Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("micronutrient record %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted micronutrient record %s\n", args[0])
			return nil
		})
	},
}

var microTotalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show the day's micronutrient totals against daily goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := dateOrToday(microDate)
		return withStore(cmd, func(s *store.Store) error {
			totals, err := service.NewMicros(s).Totals(date)
			if err != nil {
				return err
			}
			printMicroGoals(cmd, date, totals)
			return nil
		})
	},
}

func printMicroGoals(cmd *cobra.Command, date string, totals map[string]service.MicroTotal) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Micronutrients for %s\n", date)
	fmt.Fprintln(out, "NUTRIENT\tLABEL\tAMOUNT\tGOAL\tPERCENT")
	for _, st := range service.MicroGoalProgress(totals, service.MicroPresets) {
		goal := "-"
		percent := "-"
		if st.Goal > 0 {
			goal = fmt.Sprintf("%g %s", st.Goal, st.Unit)
			percent = fmt.Sprintf("%.1f%%", st.Percent)
		}
		fmt.Fprintf(out, "%s\t%s\t%g %s\t%s\t%s\n", st.Nutrient, st.Label, st.Amount, st.Unit, goal, percent)
	}
}

func init() {
	for _, c := range []*cobra.Command{microAddCmd, microUpdateCmd} {
		c.Flags().StringVar(&microDate, "date", "", "Date (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&microNutrient, "nutrient", "", "Preset id (iron, vitamin_c, ...) or custom")
		c.Flags().StringVar(&microLabel, "label", "", "Display label, required for custom nutrients")
		c.Flags().StringVar(&microAmount, "amount", "", "Amount, accepts 1.5 or 1,5")
		c.Flags().StringVar(&microUnit, "unit", "", "Unit (defaults to the preset unit)")
		c.Flags().StringVar(&microSource, "source", "", "Where the intake came from")
		c.Flags().StringVar(&microNotes, "notes", "", "Free-form notes")
		c.Flags().StringVar(&microMealID, "meal", "", "Diary entry id to attach the record to")
		c.Flags().StringVar(&microKind, "kind", "", fmt.Sprintf("Record kind (%s or %s)", model.KindMeal, model.KindSupplement))
	}
	microListCmd.Flags().StringVar(&microDate, "date", "", "Date (YYYY-MM-DD, default today)")
	microListCmd.Flags().BoolVar(&microAll, "all", false, "List records of every day")
	microTotalsCmd.Flags().StringVar(&microDate, "date", "", "Date (YYYY-MM-DD, default today)")

	microCmd.AddCommand(microAddCmd, microListCmd, microUpdateCmd, microDeleteCmd, microTotalsCmd)
	rootCmd.AddCommand(microCmd)
}
