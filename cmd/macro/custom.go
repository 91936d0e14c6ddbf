package macro

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var customCmd = &cobra.Command{
	Use:   "custom",
	Short: "Manage custom foods",
}

var (
	customName        string
	customGrams       float64
	customDescription string
	customKcal        float64
	customProtein     float64
	customCarbs       float64
	customFat         float64
)

var customAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a custom food (macros per portion)",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.CustomFoodInput{
			Name:        customName,
			Grams:       customGrams,
			Description: customDescription,
			Kcal:        customKcal,
			Protein:     customProtein,
			Carbs:       customCarbs,
			Fat:         customFat,
		}
		return withStore(cmd, func(s *store.Store) error {
			f, err := service.NewCustomFoods(s).Create(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created custom food %s (%s)\n", f.ID, f.Name)
			return nil
		})
	},
}

var customListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			foods, err := service.NewCustomFoods(s).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tNAME\tPORTION\tKCAL\tP\tC\tF")
			for _, f := range foods {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", f.ID, f.Name, service.DescribePortion(&f.Portion), formatMacros(f.Macros.Kcal, f.Macros.Protein, f.Macros.Carbs, f.Macros.Fat))
			}
			return nil
		})
	},
}

var customShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single custom food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			f, err := service.NewCustomFoods(s).Get(args[0])
			if err != nil {
				return err
			}
			if f == nil {
				return fmt.Errorf("custom food %s not found", args[0])
			}
			printCustomFood(cmd, *f)
			return nil
		})
	},
}

var customUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a custom food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch service.CustomFoodPatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			patch.Name = &customName
		}
		if flags.Changed("grams") {
			patch.Grams = &customGrams
		}
		if flags.Changed("description") {
			patch.Description = &customDescription
		}
		if flags.Changed("kcal") {
			patch.Kcal = &customKcal
		}
		if flags.Changed("protein") {
			patch.Protein = &customProtein
		}
		if flags.Changed("carbs") {
			patch.Carbs = &customCarbs
		}
		if flags.Changed("fat") {
			patch.Fat = &customFat
		}
		return withStore(cmd, func(s *store.Store) error {
			f, err := service.NewCustomFoods(s).Update(args[0], patch)
			if err != nil {
				return err
			}
			if f == nil {
				return fmt.Errorf("custom food %s not found", args[0])
			}
			printCustomFood(cmd, *f)
			return nil
		})
	},
}

var customDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a custom food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			ok, err := service.NewCustomFoods(s).Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("custom food %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted custom food %s\n", args[0])
			return nil
		})
	},
}

var customScaleCmd = &cobra.Command{
	Use:   "scale <id> <grams>",
	Short: "Show a custom food's macros for a given amount",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grams, err := parseFloatArg("grams", args[1])
		if err != nil {
			return err
		}
		return withStore(cmd, func(s *store.Store) error {
			f, err := service.NewCustomFoods(s).Get(args[0])
			if err != nil {
				return err
			}
			if f == nil {
				return fmt.Errorf("custom food %s not found", args[0])
			}
			m := service.ScaleMacros(*f, grams)
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %g g: %.0f kcal, P %.1f, C %.1f, F %.1f\n", f.Name, grams, m.Kcal, m.Protein, m.Carbs, m.Fat)
			return nil
		})
	},
}

func printCustomFood(cmd *cobra.Command, f model.CustomFood) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID: %s\n", f.ID)
	fmt.Fprintf(out, "Name: %s\n", f.Name)
	fmt.Fprintf(out, "Portion: %s (%g g)\n", service.DescribePortion(&f.Portion), f.Portion.Grams)
	fmt.Fprintf(out, "Calories: %.0f\n", f.Macros.Kcal)
	fmt.Fprintf(out, "Protein: %.1f\nCarbs: %.1f\nFat: %.1f\n", f.Macros.Protein, f.Macros.Carbs, f.Macros.Fat)
}

func init() {
	for _, c := range []*cobra.Command{customAddCmd, customUpdateCmd} {
		c.Flags().StringVar(&customName, "name", "", "Food name")
		c.Flags().Float64Var(&customGrams, "grams", 0, "Portion size in grams (default 100)")
		c.Flags().StringVar(&customDescription, "description", "", "Portion description")
		c.Flags().Float64Var(&customKcal, "kcal", 0, "Calories per portion")
		c.Flags().Float64Var(&customProtein, "protein", 0, "Protein grams per portion")
		c.Flags().Float64Var(&customCarbs, "carbs", 0, "Carb grams per portion")
		c.Flags().Float64Var(&customFat, "fat", 0, "Fat grams per portion")
	}
	customCmd.AddCommand(customAddCmd, customListCmd, customShowCmd, customUpdateCmd, customDeleteCmd, customScaleCmd)
	rootCmd.AddCommand(customCmd)
}
