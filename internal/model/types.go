package model

// Document is the whole persisted state. It is read at the start of every
// repository call and rewritten in full after every mutation.
type Document struct {
	SchemaVersion  int          `json:"schema_version"`
	Diary          []DiaryEntry `json:"diary"`
	Workouts       []Workout    `json:"workouts"`
	User           User         `json:"user"`
	CustomFoods    []CustomFood `json:"custom_foods"`
	Micronutrients []MicroEntry `json:"micronutrients"`
}

type User struct {
	Name     string  `json:"name"`
	KcalGoal float64 `json:"kcal_goal"`
}

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealSnack     = "snack"
	MealDinner    = "dinner"
	MealOther     = "other"
)

type DiaryEntry struct {
	EntryID string       `json:"entry_id"`
	Date    string       `json:"date"`
	Meal    string       `json:"meal"`
	Name    string       `json:"name"`
	Grams   float64      `json:"grams"`
	Kcal    float64      `json:"kcal"`
	Protein float64      `json:"protein"`
	Carbs   float64      `json:"carbs"`
	Fat     float64      `json:"fat"`
	Food    *FoodRef     `json:"food"`
	Micros  []MicroEntry `json:"micros"`
}

// FoodRef points at the custom food or catalog item an entry was logged
// from. It carries enough to redisplay the entry without another lookup.
type FoodRef struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Portion    *Portion `json:"portion"`
	LookupName string   `json:"lookup_name"`
}

const (
	KindMeal       = "meal"
	KindSupplement = "supplement"

	NutrientCustom = "custom"
)

type MicroEntry struct {
	EntryID     string    `json:"entry_id"`
	Nutrient    string    `json:"nutrient"`
	Label       string    `json:"label"`
	Amount      float64   `json:"amount"`
	Unit        string    `json:"unit"`
	Source      string    `json:"source"`
	Notes       string    `json:"notes"`
	Date        string    `json:"date"`
	MealEntryID *string   `json:"meal_entry_id"`
	Kind        string    `json:"kind"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

const SourceCustom = "custom"

type Portion struct {
	Grams       float64 `json:"grams"`
	Description string  `json:"description"`
}

type Macros struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type CustomFood struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Source  string  `json:"source"`
	Portion Portion `json:"portion"`
	Macros  Macros  `json:"macros"`
}

type Workout struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"`
	Title        string     `json:"title"`
	MuscleGroups []string   `json:"muscle_groups"`
	Exercises    []Exercise `json:"exercises"`
	Notes        string     `json:"notes"`
	CreatedAt    Timestamp  `json:"created_at"`
	UpdatedAt    Timestamp  `json:"updated_at"`
}

type Exercise struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Muscle string `json:"muscle"`
	Notes  string `json:"notes"`
	Sets   []Set  `json:"sets"`
}

// Key identifies the movement across workouts: the catalog id when present,
// otherwise the display name.
func (e Exercise) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

type Set struct {
	SetNumber int     `json:"set_number"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	Effort    *int    `json:"effort"`
}
