package store

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

// CurrentSchemaVersion is the version of the last document migration.
const CurrentSchemaVersion = 7

type migrationEnv struct {
	now   string
	newID func() string
}

type documentMigration struct {
	version int
	name    string
	apply   func(doc map[string]any, env migrationEnv) bool
}

// Every step is idempotent and runs on each load, so a document that was
// edited by hand converges to the current shape as well.
var documentMigrations = []documentMigration{
	{version: 1, name: "top_level_collections", apply: migrateTopLevelCollections},
	{version: 2, name: "macro_field_names", apply: migrateMacroFieldNames},
	{version: 3, name: "diary_entry_ids", apply: migrateDiaryEntryIDs},
	{version: 4, name: "micros_list_shape", apply: migrateMicrosListShape},
	{version: 5, name: "nested_micro_backfill", apply: migrateNestedMicroBackfill},
	{version: 6, name: "rehome_orphan_micros", apply: migrateRehomeOrphanMicros},
	{version: 7, name: "workout_shape", apply: migrateWorkoutShape},
}

// Migrate rewrites a raw decoded document in place and returns the names of
// the steps that changed something.
func Migrate(doc map[string]any, now time.Time, newID func() string) []string {
	env := migrationEnv{now: now.Format(time.RFC3339Nano), newID: newID}
	applied := make([]string, 0)
	for _, m := range documentMigrations {
		if m.apply(doc, env) {
			applied = append(applied, m.name)
		}
	}
	if cast.ToInt(doc["schema_version"]) < CurrentSchemaVersion {
		doc["schema_version"] = CurrentSchemaVersion
		applied = append(applied, "schema_version")
	}
	return applied
}

func migrateTopLevelCollections(doc map[string]any, _ migrationEnv) bool {
	changed := false
	for _, key := range []string{"diary", "workouts", "custom_foods", "micronutrients"} {
		items, ok := doc[key].([]any)
		if !ok {
			doc[key] = []any{}
			changed = true
			continue
		}
		objects := objectsOnly(items)
		if len(objects) != len(items) {
			doc[key] = objects
			changed = true
		}
	}
	if _, ok := doc["user"].(map[string]any); !ok {
		doc["user"] = map[string]any{"name": "", "kcal_goal": 0.0}
		changed = true
	}
	return changed
}

var legacyMacroKeys = [][2]string{{"p", "protein"}, {"c", "carbs"}, {"g", "fat"}}

func migrateMacroFieldNames(doc map[string]any, _ migrationEnv) bool {
	changed := false
	for _, entry := range objects(doc["diary"]) {
		if renameLegacyMacros(entry) {
			changed = true
		}
		for _, key := range []string{"grams", "kcal", "protein", "carbs", "fat"} {
			if coerceNumberField(entry, key) {
				changed = true
			}
		}
	}
	for _, food := range objects(doc["custom_foods"]) {
		if portion, ok := food["portion"].(map[string]any); ok && coerceNumberField(portion, "grams") {
			changed = true
		}
		macros, ok := food["macros"].(map[string]any)
		if !ok {
			continue
		}
		if renameLegacyMacros(macros) {
			changed = true
		}
		for _, key := range []string{"kcal", "protein", "carbs", "fat"} {
			if coerceNumberField(macros, key) {
				changed = true
			}
		}
	}
	return changed
}

func renameLegacyMacros(m map[string]any) bool {
	changed := false
	for _, pair := range legacyMacroKeys {
		oldKey, newKey := pair[0], pair[1]
		v, ok := m[oldKey]
		if !ok {
			continue
		}
		if _, exists := m[newKey]; !exists {
			m[newKey] = v
		}
		delete(m, oldKey)
		changed = true
	}
	return changed
}

func migrateDiaryEntryIDs(doc map[string]any, env migrationEnv) bool {
	changed := false
	for _, entry := range objects(doc["diary"]) {
		if ensureID(entry, "entry_id", env) {
			changed = true
		}
	}
	return changed
}

func migrateMicrosListShape(doc map[string]any, _ migrationEnv) bool {
	changed := false
	for _, entry := range objects(doc["diary"]) {
		switch v := entry["micros"].(type) {
		case []any:
			objs := objectsOnly(v)
			if len(objs) != len(v) {
				entry["micros"] = objs
				changed = true
			}
		case map[string]any:
			entry["micros"] = microsFromLegacyMap(v)
			changed = true
		default:
			entry["micros"] = []any{}
			changed = true
		}
	}
	return changed
}

// microsFromLegacyMap converts {nutrient: {value, unit}} or
// {nutrient: [value, unit]} into records. Items without a positive amount
// are dropped.
func microsFromLegacyMap(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, key := range keys {
		var amount any
		var unit string
		switch v := m[key].(type) {
		case map[string]any:
			amount = v["value"]
			if amount == nil {
				amount = v["amount"]
			}
			unit = cast.ToString(v["unit"])
		case []any:
			if len(v) > 0 {
				amount = v[0]
			}
			if len(v) > 1 {
				unit = cast.ToString(v[1])
			}
		default:
			amount = v
		}
		f, err := cast.ToFloat64E(amount)
		if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out = append(out, map[string]any{
			"nutrient": key,
			"label":    key,
			"amount":   f,
			"unit":     unit,
		})
	}
	return out
}

func migrateNestedMicroBackfill(doc map[string]any, env migrationEnv) bool {
	changed := false
	for _, entry := range objects(doc["diary"]) {
		for _, rec := range objects(entry["micros"]) {
			if backfillNestedMicro(rec, entry, env) {
				changed = true
			}
		}
	}
	return changed
}

func backfillNestedMicro(rec, entry map[string]any, env migrationEnv) bool {
	changed := false
	entryID := cast.ToString(entry["entry_id"])
	date := cast.ToString(entry["date"])
	if cast.ToString(rec["date"]) != date || rec["date"] == nil {
		rec["date"] = date
		changed = true
	}
	if mealID, ok := rec["meal_entry_id"].(string); !ok || mealID != entryID {
		rec["meal_entry_id"] = entryID
		changed = true
	}
	if rec["kind"] != model.KindMeal {
		rec["kind"] = model.KindMeal
		changed = true
	}
	if backfillRecordCommon(rec, env) {
		changed = true
	}
	return changed
}

func backfillRecordCommon(rec map[string]any, env migrationEnv) bool {
	changed := false
	if ensureID(rec, "entry_id", env) {
		changed = true
	}
	if isBlank(rec["created_at"]) {
		rec["created_at"] = env.now
		changed = true
	}
	if isBlank(rec["updated_at"]) {
		rec["updated_at"] = rec["created_at"]
		changed = true
	}
	if coerceNumberField(rec, "amount") {
		changed = true
	}
	return changed
}

func migrateRehomeOrphanMicros(doc map[string]any, env migrationEnv) bool {
	entries := map[string]map[string]any{}
	for _, entry := range objects(doc["diary"]) {
		id := cast.ToString(entry["entry_id"])
		if _, seen := entries[id]; !seen && id != "" {
			entries[id] = entry
		}
	}

	changed := false
	remaining := make([]any, 0)
	for _, rec := range objects(doc["micronutrients"]) {
		mealID, _ := rec["meal_entry_id"].(string)
		if entry, ok := entries[mealID]; ok && mealID != "" {
			backfillNestedMicro(rec, entry, env)
			nested, _ := entry["micros"].([]any)
			entry["micros"] = append(nested, rec)
			changed = true
			continue
		}
		// A freestanding record is a supplement and points at no meal.
		if strings.TrimSpace(cast.ToString(rec["kind"])) != model.KindSupplement {
			rec["kind"] = model.KindSupplement
			changed = true
		}
		if rec["meal_entry_id"] != nil {
			rec["meal_entry_id"] = nil
			changed = true
		}
		if backfillRecordCommon(rec, env) {
			changed = true
		}
		remaining = append(remaining, rec)
	}
	if changed {
		doc["micronutrients"] = remaining
	}
	return changed
}

func migrateWorkoutShape(doc map[string]any, env migrationEnv) bool {
	changed := false
	for _, w := range objects(doc["workouts"]) {
		if ensureID(w, "id", env) {
			changed = true
		}
		if _, ok := w["muscle_groups"].([]any); !ok {
			groups := []any{}
			if muscle := strings.TrimSpace(cast.ToString(w["muscle"])); muscle != "" {
				groups = append(groups, muscle)
			}
			w["muscle_groups"] = groups
			changed = true
		}
		if _, ok := w["muscle"]; ok {
			delete(w, "muscle")
			changed = true
		}
		if isBlank(w["title"]) {
			if title := cast.ToString(w["date"]); w["title"] != any(title) {
				w["title"] = title
				changed = true
			}
		}
		if isBlank(w["created_at"]) {
			w["created_at"] = env.now
			changed = true
		}
		if isBlank(w["updated_at"]) {
			w["updated_at"] = w["created_at"]
			changed = true
		}
		exercises, ok := w["exercises"].([]any)
		if !ok {
			w["exercises"] = []any{}
			changed = true
			continue
		}
		if objs := objectsOnly(exercises); len(objs) != len(exercises) {
			w["exercises"] = objs
			changed = true
		}
		for _, ex := range objects(w["exercises"]) {
			if migrateExerciseSets(ex) {
				changed = true
			}
		}
	}
	return changed
}

func migrateExerciseSets(ex map[string]any) bool {
	sets, ok := ex["sets"].([]any)
	if !ok {
		ex["sets"] = []any{}
		return true
	}
	changed := false
	out := make([]any, 0, len(sets))
	for i, raw := range sets {
		m, ok := raw.(map[string]any)
		if !ok {
			m = map[string]any{}
			changed = true
		}
		s := model.NormalizeSet(i+1, m["set_number"], m["reps"], m["weight"], m["effort"])
		if !setMatches(m, s) {
			m = setToMap(s)
			changed = true
		}
		out = append(out, m)
	}
	if changed {
		ex["sets"] = out
	}
	return changed
}

func setMatches(m map[string]any, s model.Set) bool {
	if !numberEquals(m["set_number"], float64(s.SetNumber)) ||
		!numberEquals(m["reps"], float64(s.Reps)) ||
		!numberEquals(m["weight"], s.Weight) {
		return false
	}
	if s.Effort == nil {
		return m["effort"] == nil
	}
	return numberEquals(m["effort"], float64(*s.Effort))
}

func setToMap(s model.Set) map[string]any {
	m := map[string]any{
		"set_number": float64(s.SetNumber),
		"reps":       float64(s.Reps),
		"weight":     s.Weight,
		"effort":     nil,
	}
	if s.Effort != nil {
		m["effort"] = float64(*s.Effort)
	}
	return m
}

func numberEquals(v any, want float64) bool {
	f, ok := v.(float64)
	return ok && f == want
}

// coerceNumberField turns numeric strings into numbers. Values that cannot be
// parsed become 0 so the typed decode never fails on them.
func coerceNumberField(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	switch v.(type) {
	case float64:
		return false
	case nil:
		m[key] = 0.0
		return true
	}
	f, err := cast.ToFloat64E(strings.Replace(strings.TrimSpace(cast.ToString(v)), ",", ".", 1))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	m[key] = f
	return true
}

func ensureID(m map[string]any, key string, env migrationEnv) bool {
	switch v := m[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return false
		}
	case nil:
	default:
		if s := cast.ToString(v); s != "" {
			m[key] = s
			return true
		}
	}
	m[key] = env.newID()
	return true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func objects(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func objectsOnly(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			out = append(out, item)
		}
	}
	return out
}
