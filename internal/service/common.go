package service

import (
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func validateNonNegativeFloat(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalid(name, "must be a finite number")
	}
	if value < 0 {
		return invalid(name, "must be >= 0")
	}
	return nil
}

func validatePositiveFloat(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return invalid(name, "must be a positive number")
	}
	return nil
}

func validateDate(name, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return invalid(name, "must be YYYY-MM-DD, got %q", value)
	}
	return nil
}

// dateWindow returns the inclusive [start, end] bounds of a days-long window
// ending at end. Non-positive days fall back to def.
func dateWindow(end string, days, def int) (string, string, error) {
	if days <= 0 {
		days = def
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return "", "", invalid("end date", "must be YYYY-MM-DD, got %q", end)
	}
	start := endDate.AddDate(0, 0, -(days - 1))
	return start.Format(dateLayout), endDate.Format(dateLayout), nil
}

func inWindow(date, start, end string) bool {
	return date >= start && date <= end
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func strPtr(s string) *string {
	return &s
}
