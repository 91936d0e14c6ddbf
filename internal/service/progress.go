package service

import (
	"sort"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

const defaultProgressDays = 14

// SessionStats aggregates the sets of one exercise within one workout.
type SessionStats struct {
	Date         string   `json:"date"`
	WorkoutTitle string   `json:"workout_title"`
	TotalSets    int      `json:"total_sets"`
	TotalReps    int      `json:"total_reps"`
	AvgReps      float64  `json:"avg_reps"`
	Volume       float64  `json:"volume"`
	BestWeight   float64  `json:"best_weight"`
	AvgEffort    *float64 `json:"avg_effort"`
}

// ProgressDelta compares the latest session against the previous one.
// Effort is previous minus latest, so a positive value means the same work
// felt easier.
type ProgressDelta struct {
	Volume     float64  `json:"volume"`
	BestWeight float64  `json:"best_weight"`
	AvgReps    float64  `json:"avg_reps"`
	Sets       int      `json:"sets"`
	Effort     *float64 `json:"effort"`
}

type ProgressReport struct {
	Key      string        `json:"key"`
	Name     string        `json:"name"`
	Image    string        `json:"image"`
	Latest   SessionStats  `json:"latest"`
	Previous SessionStats  `json:"previous"`
	Delta    ProgressDelta `json:"delta"`
}

type exerciseSession struct {
	workout  model.Workout
	exercise model.Exercise
}

// Progress compares the two most recent sessions of every exercise logged at
// least twice in the days-long window ending at endDate. An empty endDate
// means today.
func (w *Workouts) Progress(endDate string, days int) (map[string]ProgressReport, error) {
	if endDate == "" {
		endDate = w.store.Now().Format(dateLayout)
	}
	start, end, err := dateWindow(endDate, days, defaultProgressDays)
	if err != nil {
		return nil, err
	}
	doc, err := w.store.Load()
	if err != nil {
		return nil, err
	}
	return ExerciseProgress(doc.Workouts, start, end), nil
}

// ExerciseProgress groups exercise sessions by Exercise.Key within
// [start, end] and reports on keys with two or more sessions.
func ExerciseProgress(workouts []model.Workout, start, end string) map[string]ProgressReport {
	sessions := make(map[string][]exerciseSession)
	for _, workout := range workouts {
		if !inWindow(workout.Date, start, end) {
			continue
		}
		for _, ex := range workout.Exercises {
			key := ex.Key()
			if key == "" {
				continue
			}
			sessions[key] = append(sessions[key], exerciseSession{workout: workout, exercise: ex})
		}
	}

	reports := make(map[string]ProgressReport)
	for key, list := range sessions {
		if len(list) < 2 {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].workout, list[j].workout
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.CreatedAt.Before(b.CreatedAt.Time)
		})
		previous := sessionStats(list[len(list)-2])
		latest := sessionStats(list[len(list)-1])
		latestEx := list[len(list)-1].exercise
		name, image := latestEx.Name, latestEx.Image
		if info, ok := ExerciseInfo(key); ok {
			if name == "" {
				name = info.Name
			}
			if image == "" {
				image = info.Image
			}
		}
		if name == "" {
			name = key
		}
		reports[key] = ProgressReport{
			Key:      key,
			Name:     name,
			Image:    image,
			Latest:   latest,
			Previous: previous,
			Delta:    progressDelta(previous, latest),
		}
	}
	return reports
}

func sessionStats(s exerciseSession) SessionStats {
	stats := SessionStats{
		Date:         s.workout.Date,
		WorkoutTitle: s.workout.Title,
		TotalSets:    len(s.exercise.Sets),
	}
	effortSum, effortCount := 0, 0
	for _, set := range s.exercise.Sets {
		stats.TotalReps += set.Reps
		stats.Volume += float64(set.Reps) * set.Weight
		if set.Weight > stats.BestWeight {
			stats.BestWeight = set.Weight
		}
		if set.Effort != nil {
			effortSum += *set.Effort
			effortCount++
		}
	}
	if stats.TotalSets > 0 {
		stats.AvgReps = float64(stats.TotalReps) / float64(stats.TotalSets)
	}
	if effortCount > 0 {
		avg := float64(effortSum) / float64(effortCount)
		stats.AvgEffort = &avg
	}
	return stats
}

func progressDelta(previous, latest SessionStats) ProgressDelta {
	d := ProgressDelta{
		Volume:     latest.Volume - previous.Volume,
		BestWeight: latest.BestWeight - previous.BestWeight,
		AvgReps:    latest.AvgReps - previous.AvgReps,
		Sets:       latest.TotalSets - previous.TotalSets,
	}
	if previous.AvgEffort != nil && latest.AvgEffort != nil {
		effort := *previous.AvgEffort - *latest.AvgEffort
		d.Effort = &effort
	}
	return d
}
