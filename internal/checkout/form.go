// Package checkout implements order submission and the one-shot handoff of
// shipping data between the checkout and order-confirmation pages.
package checkout

import (
	"regexp"
	"strings"
)

// Delivery modes.
const (
	ModeDeliver = "deliver"
	ModePickup  = "pickup"
)

// NormalizeMode maps any input onto a valid delivery mode, defaulting to
// deliver.
func NormalizeMode(mode string) string {
	if strings.ToLower(strings.TrimSpace(mode)) == ModePickup {
		return ModePickup
	}
	return ModeDeliver
}

// ShippingForm carries the checkout page's shipping fields. Address2 is the
// only optional field.
type ShippingForm struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

var (
	numberPattern = regexp.MustCompile(`^[0-9]+$`)
	emailPattern  = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.[a-zA-Z]{2,}$`)
)

// Validate returns a field-to-message map; an empty map means the form is
// acceptable.
func (f ShippingForm) Validate() map[string]string {
	problems := make(map[string]string)

	required := map[string]string{
		"fullName":   f.FullName,
		"phone":      f.Phone,
		"email":      f.Email,
		"address1":   f.Address1,
		"postalCode": f.PostalCode,
		"city":       f.City,
		"state":      f.State,
		"country":    f.Country,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			problems[field] = "required"
		}
	}

	if phone := strings.TrimSpace(f.Phone); phone != "" && !numberPattern.MatchString(phone) {
		problems["phone"] = "digits only"
	}
	if postal := strings.TrimSpace(f.PostalCode); postal != "" && !numberPattern.MatchString(postal) {
		problems["postalCode"] = "digits only"
	}
	if email := strings.TrimSpace(f.Email); email != "" && !emailPattern.MatchString(email) {
		problems["email"] = "invalid email"
	}
	return problems
}

// Valid reports whether Validate finds no problems.
func (f ShippingForm) Valid() bool {
	return len(f.Validate()) == 0
}

func (f ShippingForm) trimmed() ShippingForm {
	return ShippingForm{
		FullName:   strings.TrimSpace(f.FullName),
		Phone:      strings.TrimSpace(f.Phone),
		Email:      strings.TrimSpace(f.Email),
		Address1:   strings.TrimSpace(f.Address1),
		Address2:   strings.TrimSpace(f.Address2),
		PostalCode: strings.TrimSpace(f.PostalCode),
		City:       strings.TrimSpace(f.City),
		State:      strings.TrimSpace(f.State),
		Country:    strings.TrimSpace(f.Country),
	}
}
