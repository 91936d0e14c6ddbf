package macro

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show or set the user profile and calorie goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			u, err := service.GetUser(s)
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		})
	},
}

var (
	userName     string
	userKcalGoal float64
)

var userSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch service.UserPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &userName
		}
		if cmd.Flags().Changed("kcal-goal") {
			patch.KcalGoal = &userKcalGoal
		}
		if patch.Name == nil && patch.KcalGoal == nil {
			return fmt.Errorf("nothing to update: pass --name or --kcal-goal")
		}
		return withStore(cmd, func(s *store.Store) error {
			u, err := service.UpdateUser(s, patch)
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		})
	},
}

func printUser(cmd *cobra.Command, u model.User) {
	name := u.Name
	if name == "" {
		name = "(not set)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\n", name)
	if u.KcalGoal > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Calorie goal: %.0f\n", u.KcalGoal)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Calorie goal: (not set)")
	}
}

func init() {
	userSetCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userSetCmd.Flags().Float64Var(&userKcalGoal, "kcal-goal", 0, "Daily calorie goal")
	userCmd.AddCommand(userSetCmd)
	rootCmd.AddCommand(userCmd)
}
