package macro

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log strength training sessions and track progress",
}

var (
	workoutID        string
	workoutDate      string
	workoutTitle     string
	workoutMuscles   []string
	workoutNotes     string
	workoutExercises []string
)

var workoutAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a workout (reusing --id replaces it)",
	Example: `  macro workout add --title "Push" --muscles chest,triceps \
    --exercise "bench-press:Press banca=8x60@7,8x62.5@8" --exercise "Fondos=12x0" --exercise "back_squat=5x100"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.WorkoutInput{
			ID:           workoutID,
			Date:         dateOrToday(workoutDate),
			Title:        workoutTitle,
			MuscleGroups: workoutMuscles,
			Notes:        workoutNotes,
		}
		for _, raw := range workoutExercises {
			ex, err := parseExerciseFlag(raw)
			if err != nil {
				return err
			}
			in.Exercises = append(in.Exercises, ex)
		}
		return withStore(cmd, func(s *store.Store) error {
			w, err := service.NewWorkouts(s).Create(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved workout %s (%s, %d exercises)\n", w.ID, w.Title, len(w.Exercises))
			return nil
		})
	},
}

// parseExerciseFlag reads "[id:]name[/muscle]=REPSxWEIGHT[@EFFORT],..." into
// an exercise. A bare head naming a library exercise is taken as its id.
// Values are passed through as text and coerced on save.
func parseExerciseFlag(value string) (service.ExerciseInput, error) {
	head, sets, ok := strings.Cut(value, "=")
	if !ok {
		return service.ExerciseInput{}, fmt.Errorf("invalid --exercise %q (expected name=REPSxWEIGHT[@EFFORT],...)", value)
	}
	var ex service.ExerciseInput
	if id, name, found := strings.Cut(head, ":"); found {
		ex.ID = strings.TrimSpace(id)
		head = name
	}
	ex.Name, ex.Muscle, _ = strings.Cut(head, "/")
	ex.Name = strings.TrimSpace(ex.Name)
	ex.Muscle = strings.TrimSpace(ex.Muscle)
	if ex.ID == "" {
		if _, known := service.ExerciseInfo(ex.Name); known {
			ex.ID, ex.Name = ex.Name, ""
		}
	}

	for i, raw := range strings.Split(sets, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		set := service.SetInput{SetNumber: i + 1}
		if body, effort, found := strings.Cut(raw, "@"); found {
			set.Effort = strings.TrimSpace(effort)
			raw = body
		}
		reps, weight, found := strings.Cut(strings.ToLower(raw), "x")
		if !found {
			return service.ExerciseInput{}, fmt.Errorf("invalid set %q in --exercise %q (expected REPSxWEIGHT)", raw, value)
		}
		set.Reps = strings.TrimSpace(reps)
		set.Weight = strings.TrimSpace(weight)
		ex.Sets = append(ex.Sets, set)
	}
	return ex, nil
}

var workoutListLimit int

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workouts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			workouts, err := service.NewWorkouts(s).List(workoutListLimit)
			if err != nil {
				return err
			}
			printWorkouts(cmd.OutOrStdout(), workouts)
			return nil
		})
	},
}

var (
	workoutEnd          string
	workoutWeekDays     int
	workoutProgressDays int
)

var workoutWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "List workouts of the last days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			workouts, err := service.NewWorkouts(s).Week(dateOrToday(workoutEnd), workoutWeekDays)
			if err != nil {
				return err
			}
			printWorkouts(cmd.OutOrStdout(), workouts)
			return nil
		})
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			ok, err := service.NewWorkouts(s).Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("workout %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workout %s\n", args[0])
			return nil
		})
	},
}

var workoutProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Compare the last two sessions of each exercise",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			reports, err := service.NewWorkouts(s).Progress(workoutEnd, workoutProgressDays)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				fmt.Fprintln(out, "Not enough sessions to compare yet")
				return nil
			}
			keys := make([]string, 0, len(reports))
			for k := range reports {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "EXERCISE\tLATEST\tPREVIOUS\tVOLUME\tBEST\tREPS\tSETS\tEFFORT")
			for _, k := range keys {
				r := reports[k]
				effort := "-"
				if r.Delta.Effort != nil {
					effort = fmt.Sprintf("%+.1f", *r.Delta.Effort)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%+g\t%+g\t%+g\t%+d\t%s\n", r.Name, r.Latest.Date, r.Previous.Date, r.Delta.Volume, r.Delta.BestWeight, r.Delta.AvgReps, r.Delta.Sets, effort)
			}
			return nil
		})
	},
}

var workoutLibraryMuscles []string

var workoutExercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "List the built-in exercise library",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ID\tNAME\tMUSCLE")
		for _, ex := range service.ExercisesByMuscles(workoutLibraryMuscles) {
			fmt.Fprintf(out, "%s\t%s\t%s\n", ex.ID, ex.Name, ex.Muscle)
		}
		return nil
	},
}

func printWorkouts(w io.Writer, workouts []model.Workout) {
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tMUSCLES\tEXERCISES\tSETS")
	for _, wo := range workouts {
		sets := 0
		for _, ex := range wo.Exercises {
			sets += len(ex.Sets)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", wo.ID, wo.Date, wo.Title, strings.Join(wo.MuscleGroups, ","), len(wo.Exercises), sets)
	}
}

func init() {
	workoutAddCmd.Flags().StringVar(&workoutID, "id", "", "Workout id (existing id replaces that workout)")
	workoutAddCmd.Flags().StringVar(&workoutDate, "date", "", "Date (YYYY-MM-DD, default today)")
	workoutAddCmd.Flags().StringVar(&workoutTitle, "title", "", "Title (default the date)")
	workoutAddCmd.Flags().StringSliceVar(&workoutMuscles, "muscles", nil, "Muscle groups, comma separated")
	workoutAddCmd.Flags().StringVar(&workoutNotes, "notes", "", "Free-form notes")
	workoutAddCmd.Flags().StringArrayVar(&workoutExercises, "exercise", nil, "Exercise as [id:]name[/muscle]=REPSxWEIGHT[@EFFORT],..., repeatable")
	workoutListCmd.Flags().IntVar(&workoutListLimit, "limit", 0, "Maximum workouts (0 for all)")
	for _, c := range []*cobra.Command{workoutWeekCmd, workoutProgressCmd} {
		c.Flags().StringVar(&workoutEnd, "end", "", "Last day of the window (default today)")
	}
	workoutWeekCmd.Flags().IntVar(&workoutWeekDays, "days", 7, "Window length in days")
	workoutProgressCmd.Flags().IntVar(&workoutProgressDays, "days", 14, "Window length in days")
	workoutExercisesCmd.Flags().StringSliceVar(&workoutLibraryMuscles, "muscle", nil, "Only these muscle groups, comma separated")

	workoutCmd.AddCommand(workoutAddCmd, workoutListCmd, workoutWeekCmd, workoutDeleteCmd, workoutProgressCmd, workoutExercisesCmd)
	rootCmd.AddCommand(workoutCmd)
}
