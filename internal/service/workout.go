package service

import (
	"sort"
	"strings"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

// Workouts manages logged training sessions.
type Workouts struct {
	store *store.Store
}

func NewWorkouts(s *store.Store) *Workouts {
	return &Workouts{store: s}
}

// WorkoutInput describes a whole session. Passing the ID of an existing
// workout replaces it and keeps its creation time.
type WorkoutInput struct {
	ID           string
	Date         string
	Title        string
	MuscleGroups []string
	Exercises    []ExerciseInput
	Notes        string
}

type ExerciseInput struct {
	ID     string
	Name   string
	Image  string
	Muscle string
	Notes  string
	Sets   []SetInput
}

// SetInput carries loosely typed values, coerced when the workout is saved.
type SetInput struct {
	SetNumber any
	Reps      any
	Weight    any
	Effort    any
}

func (in WorkoutInput) validate() error {
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	for i, ex := range in.Exercises {
		if strings.TrimSpace(ex.ID) == "" && strings.TrimSpace(ex.Name) == "" {
			return invalid("exercises", "exercise %d needs an id or a name", i+1)
		}
	}
	return nil
}

func buildExercises(inputs []ExerciseInput) []model.Exercise {
	out := make([]model.Exercise, 0, len(inputs))
	for _, in := range inputs {
		ex := model.Exercise{
			ID:     strings.TrimSpace(in.ID),
			Name:   strings.TrimSpace(in.Name),
			Image:  strings.TrimSpace(in.Image),
			Muscle: strings.TrimSpace(in.Muscle),
			Notes:  strings.TrimSpace(in.Notes),
			Sets:   make([]model.Set, 0, len(in.Sets)),
		}
		if info, ok := ExerciseInfo(ex.ID); ok {
			if ex.Name == "" {
				ex.Name = info.Name
			}
			if ex.Muscle == "" {
				ex.Muscle = info.Muscle
			}
			if ex.Image == "" {
				ex.Image = info.Image
			}
		}
		for i, s := range in.Sets {
			ex.Sets = append(ex.Sets, model.NormalizeSet(i+1, s.SetNumber, s.Reps, s.Weight, s.Effort))
		}
		out = append(out, ex)
	}
	return out
}

func cleanGroups(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func (w *Workouts) Create(in WorkoutInput) (model.Workout, error) {
	if err := in.validate(); err != nil {
		return model.Workout{}, err
	}
	var saved model.Workout
	err := w.store.Update(func(doc *model.Document) (bool, error) {
		now := model.NewTimestamp(w.store.Now())
		workout := model.Workout{
			ID:           strings.TrimSpace(in.ID),
			Date:         in.Date,
			Title:        strings.TrimSpace(in.Title),
			MuscleGroups: cleanGroups(in.MuscleGroups),
			Exercises:    buildExercises(in.Exercises),
			Notes:        strings.TrimSpace(in.Notes),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if workout.Title == "" {
			workout.Title = workout.Date
		}
		if i, ok := findWorkout(doc, workout.ID); ok {
			if created := doc.Workouts[i].CreatedAt; !created.IsZero() {
				workout.CreatedAt = created
			}
			doc.Workouts[i] = workout
		} else {
			if workout.ID == "" {
				workout.ID = w.store.NewID()
			}
			doc.Workouts = append(doc.Workouts, workout)
		}
		saved = workout
		return true, nil
	})
	if err != nil {
		return model.Workout{}, err
	}
	return saved, nil
}

// List returns workouts newest first. A positive limit truncates the result.
func (w *Workouts) List(limit int) ([]model.Workout, error) {
	doc, err := w.store.Load()
	if err != nil {
		return nil, err
	}
	out := append([]model.Workout{}, doc.Workouts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (w *Workouts) Week(endDate string, days int) ([]model.Workout, error) {
	start, end, err := dateWindow(endDate, days, 7)
	if err != nil {
		return nil, err
	}
	all, err := w.List(0)
	if err != nil {
		return nil, err
	}
	out := make([]model.Workout, 0)
	for _, workout := range all {
		if inWindow(workout.Date, start, end) {
			out = append(out, workout)
		}
	}
	return out, nil
}

func (w *Workouts) Delete(id string) (bool, error) {
	found := false
	err := w.store.Update(func(doc *model.Document) (bool, error) {
		i, ok := findWorkout(doc, id)
		if !ok {
			return false, nil
		}
		doc.Workouts = append(doc.Workouts[:i], doc.Workouts[i+1:]...)
		found = true
		return true, nil
	})
	return found, err
}

func findWorkout(doc *model.Document, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i := range doc.Workouts {
		if doc.Workouts[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
