package macro

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage food diary entries",
}

var (
	foodDate    string
	foodMeal    string
	foodName    string
	foodGrams   float64
	foodKcal    float64
	foodProtein float64
	foodCarbs   float64
	foodFat     float64
	foodCustom  string
	foodMicros  []string
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food to the diary",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.FoodEntryInput{
			Date:    dateOrToday(foodDate),
			Meal:    foodMeal,
			Name:    foodName,
			Grams:   foodGrams,
			Kcal:    foodKcal,
			Protein: foodProtein,
			Carbs:   foodCarbs,
			Fat:     foodFat,
		}
		for _, raw := range foodMicros {
			m, err := parseMicroFlag(raw)
			if err != nil {
				return err
			}
			in.Micros = append(in.Micros, m)
		}
		return withStore(cmd, func(s *store.Store) error {
			if foodCustom != "" {
				food, err := service.NewCustomFoods(s).Get(foodCustom)
				if err != nil {
					return err
				}
				if food == nil {
					return fmt.Errorf("custom food %s not found", foodCustom)
				}
				fromCustomFood(&in, *food, cmd.Flags().Changed("grams"))
			}
			e, err := service.NewDiary(s).Add(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (%s, %.0f kcal)\n", e.EntryID, e.Meal, e.Kcal)
			return nil
		})
	},
}

// fromCustomFood fills the entry from a saved food, scaling its macros to the
// requested grams or logging one portion.
func fromCustomFood(in *service.FoodEntryInput, food model.CustomFood, gramsSet bool) {
	if !gramsSet {
		in.Grams = food.Portion.Grams
	}
	if in.Name == "" {
		in.Name = food.Name
	}
	m := service.ScaleMacros(food, in.Grams)
	in.Kcal, in.Protein, in.Carbs, in.Fat = m.Kcal, m.Protein, m.Carbs, m.Fat
	portion := food.Portion
	in.Food = &model.FoodRef{ID: food.ID, Source: food.Source, Portion: &portion, LookupName: food.Name}
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entries of a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			entries, err := service.NewDiary(s).Day(dateOrToday(foodDate))
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var foodRecentLimit int

var foodRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently logged entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			entries, err := service.NewDiary(s).Recent(foodRecentLimit)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var (
	foodWeekEnd  string
	foodWeekDays int
)

var foodWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "List the entries of the last days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			entries, err := service.NewDiary(s).Week(dateOrToday(foodWeekEnd), foodWeekDays)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var foodUpdateCmd = &cobra.Command{
	Use:   "update <entry-id>",
	Short: "Update a diary entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch service.FoodEntryPatch
		flags := cmd.Flags()
		if flags.Changed("date") {
			patch.Date = &foodDate
		}
		if flags.Changed("meal") {
			patch.Meal = &foodMeal
		}
		if flags.Changed("name") {
			patch.Name = &foodName
		}
		if flags.Changed("grams") {
			patch.Grams = &foodGrams
		}
		if flags.Changed("kcal") {
			patch.Kcal = &foodKcal
		}
		if flags.Changed("protein") {
			patch.Protein = &foodProtein
		}
		if flags.Changed("carbs") {
			patch.Carbs = &foodCarbs
		}
		if flags.Changed("fat") {
			patch.Fat = &foodFat
		}
		return withStore(cmd, func(s *store.Store) error {
			ok, err := service.NewDiary(s).Update(args[0], patch)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("entry %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %s\n", args[0])
			return nil
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a diary entry and its micronutrients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			ok, err := service.NewDiary(s).Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("entry %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", args[0])
			return nil
		})
	},
}

func printEntries(w io.Writer, entries []model.DiaryEntry) {
	fmt.Fprintln(w, "ID\tDATE\tMEAL\tNAME\tGRAMS\tKCAL\tP\tC\tF\tMICROS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%s\t%d\n", e.EntryID, e.Date, e.Meal, e.Name, e.Grams, formatMacros(e.Kcal, e.Protein, e.Carbs, e.Fat), len(e.Micros))
	}
}

func init() {
	for _, c := range []*cobra.Command{foodAddCmd, foodUpdateCmd} {
		c.Flags().StringVar(&foodDate, "date", "", "Date (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&foodMeal, "meal", "", "Meal (breakfast, lunch, snack, dinner, other)")
		c.Flags().StringVar(&foodName, "name", "", "Food name")
		c.Flags().Float64Var(&foodGrams, "grams", 0, "Amount eaten in grams")
		c.Flags().Float64Var(&foodKcal, "kcal", 0, "Calories")
		c.Flags().Float64Var(&foodProtein, "protein", 0, "Protein grams")
		c.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carb grams")
		c.Flags().Float64Var(&foodFat, "fat", 0, "Fat grams")
	}
	foodAddCmd.Flags().StringVar(&foodCustom, "custom", "", "Log from a custom food id, scaling its macros to --grams")
	foodAddCmd.Flags().StringArrayVar(&foodMicros, "micro", nil, "Micronutrient as name=amount[unit], repeatable")
	foodListCmd.Flags().StringVar(&foodDate, "date", "", "Date (YYYY-MM-DD, default today)")
	foodRecentCmd.Flags().IntVar(&foodRecentLimit, "limit", 20, "Maximum entries (0 for all)")
	foodWeekCmd.Flags().StringVar(&foodWeekEnd, "end", "", "Last day of the window (default today)")
	foodWeekCmd.Flags().IntVar(&foodWeekDays, "days", 7, "Window length in days")

	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodRecentCmd, foodWeekCmd, foodUpdateCmd, foodDeleteCmd)
	rootCmd.AddCommand(foodCmd)
}
