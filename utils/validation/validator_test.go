package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=student institute"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(registerInput{Email: "nope", Password: "123", Role: "admin"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "password must be at least 6 characters", fields["password"])
	assert.Equal(t, "role must be one of: student institute", fields["role"])

	assert.Equal(t,
		"Invalid email format; name is required; password must be at least 6 characters; role must be one of: student institute",
		Details(err))
}

func TestValidateStructPasses(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(registerInput{Name: "A", Email: "a@b.co", Password: "secret", Role: "student"}))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Hello world", StripHTML("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "safe", StripHTML("<script>alert(1)</script>safe"))
	assert.Equal(t, "plain text", StripHTML("  plain text  "))
	assert.Equal(t, "a & b", StripHTML("a &amp; b"))
}

func TestCleanTextTruncates(t *testing.T) {
	assert.Equal(t, "abc", CleanText("<i>abcdef</i>", 3))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

type contactInput struct {
	Phone string `json:"contact_phone" validate:"omitempty,phone"`
	Date  string `json:"start_date" validate:"omitempty,date"`
}

func TestPhoneAndDateRules(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(contactInput{Phone: "+1 (555) 010-2030", Date: "2026-03-01"}))
	assert.NoError(t, v.ValidateStruct(contactInput{}))

	err := v.ValidateStruct(contactInput{Phone: "call me", Date: "01/03/2026"})
	require.Error(t, err)
	fields := FieldErrors(err)
	assert.Equal(t, "contact_phone must be a valid phone number", fields["contact_phone"])
	assert.Equal(t, "start_date must be a date in YYYY-MM-DD format", fields["start_date"])
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Bread\tRoll", SanitizeString("  Bread\x00\tRoll\x07 "))
	assert.Empty(t, FieldErrors(errors.New("not a validation error")))
}
