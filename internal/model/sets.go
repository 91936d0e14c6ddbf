package model

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// NormalizeSet coerces loosely typed set values. Non-numeric reps and weight
// become 0, negative values are clamped to 0, a non-numeric effort becomes
// nil and a missing set number falls back to the 1-based position.
func NormalizeSet(position int, setNumber, reps, weight, effort any) Set {
	s := Set{
		SetNumber: coerceInt(setNumber),
		Reps:      coerceInt(reps),
		Weight:    coerceFloat(weight),
	}
	if s.SetNumber <= 0 {
		s.SetNumber = position
	}
	if s.Reps < 0 {
		s.Reps = 0
	}
	if s.Weight < 0 {
		s.Weight = 0
	}
	if v, ok := coerceOptionalInt(effort); ok {
		s.Effort = &v
	}
	return s
}

func coerceInt(v any) int {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	if f, err := cast.ToFloat64E(v); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(math.Round(f))
	}
	return 0
}

func coerceFloat(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func coerceOptionalInt(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, false
		}
		v = t
	case bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}
