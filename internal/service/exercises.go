package service

import "strings"

// LibraryExercise is a built-in movement that workouts can reference by id.
type LibraryExercise struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Muscle string `json:"muscle"`
	Image  string `json:"image"`
}

const (
	imageBase   = "https://images.unsplash.com/"
	imageParams = "?auto=format&fit=crop&w=900&q=60"
)

var ExerciseLibrary = []LibraryExercise{
	{ID: "bench_press_bar", Name: "Press de banca con barra", Muscle: "Pecho", Image: imageBase + "photo-1517836357463-d25dfeac3438" + imageParams},
	{ID: "incline_dumbbell_press", Name: "Press inclinado con mancuernas", Muscle: "Pecho", Image: imageBase + "photo-1583454110551-21f2fa2afe61" + imageParams},
	{ID: "pec_dec", Name: "Contractor de pecho (Pec Deck)", Muscle: "Pecho", Image: imageBase + "photo-1589829037393-f9c75f6b4c1d" + imageParams},
	{ID: "lat_pulldown", Name: "Jalon al pecho", Muscle: "Espalda", Image: imageBase + "photo-1518611012118-696072aa579a" + imageParams},
	{ID: "barbell_row", Name: "Remo con barra", Muscle: "Espalda", Image: imageBase + "photo-1526506118085-60ce8714f8c5" + imageParams},
	{ID: "seated_row", Name: "Remo sentado en polea", Muscle: "Espalda", Image: imageBase + "photo-1540760028073-4f8ce74300c4" + imageParams},
	{ID: "back_squat", Name: "Sentadilla espalda", Muscle: "Piernas", Image: imageBase + "photo-1526402466350-043f1b0a4c54" + imageParams},
	{ID: "leg_press", Name: "Prensa inclinada", Muscle: "Piernas", Image: imageBase + "photo-1571907485990-6e40b1620690" + imageParams},
	{ID: "romanian_deadlift", Name: "Peso muerto rumano", Muscle: "Piernas", Image: imageBase + "photo-1534367610401-9f85a215bd1d" + imageParams},
	{ID: "shoulder_press", Name: "Press militar con mancuernas", Muscle: "Hombros", Image: imageBase + "photo-1530825894095-9c184b068fcb" + imageParams},
	{ID: "lateral_raise", Name: "Elevaciones laterales", Muscle: "Hombros", Image: imageBase + "photo-1617364852220-0f9d47095fac" + imageParams},
	{ID: "face_pull", Name: "Face pull en polea", Muscle: "Hombros", Image: imageBase + "photo-1528642474498-1af0c17fd8c4" + imageParams},
	{ID: "barbell_curl", Name: "Curl de biceps con barra", Muscle: "Biceps", Image: imageBase + "photo-1593079831251-35e6c88da23c" + imageParams},
	{ID: "incline_db_curl", Name: "Curl inclinado con mancuernas", Muscle: "Biceps", Image: imageBase + "photo-1574680034394-7d2c24e1d9c0" + imageParams},
	{ID: "hammer_curl", Name: "Curl martillo", Muscle: "Biceps", Image: imageBase + "photo-1517963628607-235ccdd5476c" + imageParams},
	{ID: "tricep_pushdown", Name: "Extension de triceps en polea", Muscle: "Triceps", Image: imageBase + "photo-1517502166878-35c93a0072bb" + imageParams},
	{ID: "skullcrusher", Name: "Press frances (skull crusher)", Muscle: "Triceps", Image: imageBase + "photo-1559741803-1f3e79a1b2c8" + imageParams},
	{ID: "bench_dips", Name: "Fondos entre bancos", Muscle: "Triceps", Image: imageBase + "photo-1526506118085-60ce8714f8c5" + imageParams},
	{ID: "plank", Name: "Plancha", Muscle: "Core", Image: imageBase + "photo-1554344057-99829f17a602" + imageParams},
	{ID: "hanging_leg_raise", Name: "Elevaciones de piernas", Muscle: "Core", Image: imageBase + "photo-1517832207067-4db24a2ae47c" + imageParams},
	{ID: "cable_crunch", Name: "Crunch en polea", Muscle: "Core", Image: imageBase + "photo-1584865288649-299164c46eb3" + imageParams},
}

// ExercisesByMuscles filters the library by muscle group, case-insensitively.
// No muscles returns the whole library.
func ExercisesByMuscles(muscles []string) []LibraryExercise {
	if len(muscles) == 0 {
		return append([]LibraryExercise{}, ExerciseLibrary...)
	}
	wanted := make(map[string]bool, len(muscles))
	for _, m := range muscles {
		wanted[normalizeName(m)] = true
	}
	out := make([]LibraryExercise, 0)
	for _, ex := range ExerciseLibrary {
		if wanted[strings.ToLower(ex.Muscle)] {
			out = append(out, ex)
		}
	}
	return out
}

func ExerciseInfo(id string) (LibraryExercise, bool) {
	id = strings.TrimSpace(id)
	for _, ex := range ExerciseLibrary {
		if ex.ID == id {
			return ex, true
		}
	}
	return LibraryExercise{}, false
}
