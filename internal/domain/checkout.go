package domain

import "strings"

// CheckoutState tracks a session's progress through checkout.
type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "IDLE"
	CheckoutStateSubmitting CheckoutState = "SUBMITTING"
	CheckoutStateRedirected CheckoutState = "REDIRECTED"
)

// BillingInfo is collected on the checkout form. All fields are required.
type BillingInfo struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	City     string
	Country  string
}

// MissingFields lists the names of blank fields.
func (b BillingInfo) MissingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", b.FullName},
		{"email", b.Email},
		{"phone", b.Phone},
		{"address", b.Address},
		{"city", b.City},
		{"country", b.Country},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// EnrollmentOutcome is the result of enrolling one cart course at checkout.
type EnrollmentOutcome struct {
	CourseID string
	Enrolled bool
	Error    string
}
