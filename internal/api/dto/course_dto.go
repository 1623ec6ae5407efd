package dto

import "github.com/shopspring/decimal"

// CourseRequest is the admin create/update payload. Price accepts a JSON
// number or string.
type CourseRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Duration     string          `json:"duration"`
	Instructor   string          `json:"instructor"`
	Level        string          `json:"level"`
	Category     string          `json:"category"`
	Image        string          `json:"image"`
	Details      string          `json:"details"`
	ResourceLink string          `json:"resource_link"`
}

// CourseResponse is a catalog entry. Prices are decimal strings.
type CourseResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Duration    string          `json:"duration"`
	Instructor  string          `json:"instructor"`
	Level       string          `json:"level"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Details     string          `json:"details,omitempty"`
}

// AdminCourseResponse adds fields only admins see.
type AdminCourseResponse struct {
	CourseResponse
	ResourceLink string `json:"resource_link,omitempty"`
}
