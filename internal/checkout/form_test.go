package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() ShippingForm {
	return ShippingForm{
		FullName:   "Dana Reyes",
		Phone:      "5551234567",
		Email:      "dana@example.com",
		Address1:   "1 Main St",
		PostalCode: "94105",
		City:       "San Francisco",
		State:      "CA",
		Country:    "USA",
	}
}

func TestShippingFormValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ShippingForm)
		field   string
		message string
	}{
		{name: "missing full name", mutate: func(f *ShippingForm) { f.FullName = "" }, field: "fullName", message: "required"},
		{name: "whitespace-only city", mutate: func(f *ShippingForm) { f.City = "   " }, field: "city", message: "required"},
		{name: "missing state", mutate: func(f *ShippingForm) { f.State = "" }, field: "state", message: "required"},
		{name: "missing country", mutate: func(f *ShippingForm) { f.Country = "" }, field: "country", message: "required"},
		{name: "missing address1", mutate: func(f *ShippingForm) { f.Address1 = "" }, field: "address1", message: "required"},
		{name: "phone with letters", mutate: func(f *ShippingForm) { f.Phone = "555-CALL" }, field: "phone", message: "digits only"},
		{name: "postal code with dash", mutate: func(f *ShippingForm) { f.PostalCode = "94105-1234" }, field: "postalCode", message: "digits only"},
		{name: "email without domain", mutate: func(f *ShippingForm) { f.Email = "dana@" }, field: "email", message: "invalid email"},
		{name: "email without at sign", mutate: func(f *ShippingForm) { f.Email = "dana.example.com" }, field: "email", message: "invalid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			problems := form.Validate()
			assert.Equal(t, tt.message, problems[tt.field])
			assert.False(t, form.Valid())
		})
	}
}

func TestShippingFormValidAcceptsCompleteForm(t *testing.T) {
	form := validForm()
	assert.Empty(t, form.Validate())
	assert.True(t, form.Valid())
}

func TestShippingFormAddress2Optional(t *testing.T) {
	form := validForm()
	form.Address2 = ""
	assert.True(t, form.Valid())

	form.Address2 = "Apt 4B"
	assert.True(t, form.Valid())
}

func TestNormalizeMode(t *testing.T) {
	assert.Equal(t, ModePickup, NormalizeMode("pickup"))
	assert.Equal(t, ModePickup, NormalizeMode("  PICKUP "))
	assert.Equal(t, ModeDeliver, NormalizeMode("deliver"))
	assert.Equal(t, ModeDeliver, NormalizeMode(""))
	assert.Equal(t, ModeDeliver, NormalizeMode("drone"))
}
