package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CourseLevel is the difficulty band of a course.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "Beginner"
	CourseLevelIntermediate CourseLevel = "Intermediate"
	CourseLevelAdvanced     CourseLevel = "Advanced"
)

// ParseCourseLevel accepts any casing of a known level.
func ParseCourseLevel(s string) (CourseLevel, error) {
	for _, level := range []CourseLevel{CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced} {
		if strings.EqualFold(strings.TrimSpace(s), string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown course level %q", s)
}

// Course is a purchasable catalog entry. The catalog is stored as one JSON
// document, so field tags are part of the persisted format.
type Course struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Duration     string          `json:"duration"`
	Instructor   string          `json:"instructor"`
	Level        CourseLevel     `json:"level"`
	Category     string          `json:"category"`
	Image        string          `json:"image"`
	Details      string          `json:"details,omitempty"`
	ResourceLink string          `json:"resource_link,omitempty"`
}

// Matches reports whether term appears, case-insensitively, in the searchable fields.
func (c Course) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{c.Title, c.Description, c.Category, c.Instructor} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
