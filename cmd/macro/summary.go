package macro

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Daily and weekly nutrition summaries",
}

var summaryDate string

var summaryDayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show a day's totals, meals and micronutrients",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := dateOrToday(summaryDate)
		return withStore(cmd, func(s *store.Store) error {
			entries, err := service.NewDiary(s).Day(date)
			if err != nil {
				return err
			}
			user, err := service.GetUser(s)
			if err != nil {
				return err
			}
			totals, err := service.NewMicros(s).Totals(date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			status := service.StatusForDay(date, entries, user)
			fmt.Fprintf(out, "Date: %s (%d entries)\n", status.Date, status.Entries)
			fmt.Fprintf(out, "Calories: %.0f\n", status.Totals.Kcal)
			if status.KcalGoal > 0 {
				fmt.Fprintf(out, "Goal: %.0f (remaining %.0f)\n", status.KcalGoal, status.Remaining)
			}
			fmt.Fprintf(out, "Protein: %.1f\nCarbs: %.1f\nFat: %.1f\n", status.Totals.Protein, status.Totals.Carbs, status.Totals.Fat)

			fmt.Fprintln(out, "MEAL\tENTRIES\tKCAL\tP\tC\tF")
			for _, m := range service.MealBreakdown(entries) {
				fmt.Fprintf(out, "%s\t%d\t%s\n", m.Meal, m.Entries, formatMacros(m.Totals.Kcal, m.Totals.Protein, m.Totals.Carbs, m.Totals.Fat))
			}
			printMicroGoals(cmd, date, totals)
			return nil
		})
	},
}

var (
	summaryEnd  string
	summaryDays int
)

var summaryWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show per-day totals for the last days",
	RunE: func(cmd *cobra.Command, args []string) error {
		end := dateOrToday(summaryEnd)
		return withStore(cmd, func(s *store.Store) error {
			entries, err := service.NewDiary(s).Week(end, summaryDays)
			if err != nil {
				return err
			}
			rows, err := service.WeeklySummary(entries, end, summaryDays)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "DATE\tENTRIES\tKCAL\tP\tC\tF")
			var sum service.MacroTotals
			for _, r := range rows {
				fmt.Fprintf(out, "%s\t%d\t%s\n", r.Date, r.Entries, formatMacros(r.Totals.Kcal, r.Totals.Protein, r.Totals.Carbs, r.Totals.Fat))
				sum.Kcal += r.Totals.Kcal
				sum.Protein += r.Totals.Protein
				sum.Carbs += r.Totals.Carbs
				sum.Fat += r.Totals.Fat
			}
			if n := float64(len(rows)); n > 0 {
				fmt.Fprintf(out, "Average\t-\t%s\n", formatMacros(sum.Kcal/n, sum.Protein/n, sum.Carbs/n, sum.Fat/n))
			}
			return nil
		})
	},
}

func init() {
	summaryDayCmd.Flags().StringVar(&summaryDate, "date", "", "Date (YYYY-MM-DD, default today)")
	summaryWeekCmd.Flags().StringVar(&summaryEnd, "end", "", "Last day of the window (default today)")
	summaryWeekCmd.Flags().IntVar(&summaryDays, "days", 7, "Window length in days")

	summaryCmd.AddCommand(summaryDayCmd, summaryWeekCmd)
	rootCmd.AddCommand(summaryCmd)
}
