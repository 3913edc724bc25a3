package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateField_Required(t *testing.T) {
	field := FieldSpec{Name: "firstName", Label: "First Name", Type: TypeText, Required: true}

	assert.Equal(t, "First Name is required", ValidateField(field, Text("")))
	assert.Equal(t, "First Name is required", ValidateField(field, None()))
	assert.Equal(t, "", ValidateField(field, Text("Jane")))
}

func TestValidateField_RequiredList(t *testing.T) {
	field := FieldSpec{Name: "rooms", Label: "Rooms", Type: TypeCheckbox, Required: true, Options: []Option{{Value: "kitchen"}}}

	assert.NotEmpty(t, ValidateField(field, Multi()))
	assert.Empty(t, ValidateField(field, Multi("kitchen")))
}

func TestValidateField_OptionalEmptySkipsChecks(t *testing.T) {
	field := FieldSpec{
		Name: "zipCode", Label: "ZIP Code", Type: TypeText,
		Validation: &Validation{Pattern: `\d{5}`},
	}
	assert.Empty(t, ValidateField(field, Text("")))
	assert.Empty(t, ValidateField(FieldSpec{Name: "email", Label: "Email", Type: TypeEmail}, None()))
}

func TestValidateField_PatternWholeValue(t *testing.T) {
	field := FieldSpec{
		Name: "zipCode", Label: "ZIP Code", Type: TypeText,
		Validation: &Validation{Pattern: `\d{5}(-\d{4})?`, Message: "Please enter a valid ZIP code"},
	}
	assert.Empty(t, ValidateField(field, Text("99201")))
	assert.Empty(t, ValidateField(field, Text("99201-1234")))
	assert.Equal(t, "Please enter a valid ZIP code", ValidateField(field, Text("992011")))
	assert.Equal(t, "Please enter a valid ZIP code", ValidateField(field, Text("zip 99201")))
}

func TestValidateField_PatternGenericMessage(t *testing.T) {
	field := FieldSpec{Name: "windowCount", Label: "Window Count", Type: TypeNumber, Validation: &Validation{Pattern: `\d+`}}
	assert.Equal(t, "Invalid Window Count", ValidateField(field, Text("ten")))
}

func TestValidateField_InvalidPatternFailsClosed(t *testing.T) {
	field := FieldSpec{Name: "code", Label: "Code", Type: TypeText, Validation: &Validation{Pattern: `(`}}
	assert.Equal(t, "Invalid Code", ValidateField(field, Text("x")))
}

func TestValidateField_Email(t *testing.T) {
	field := FieldSpec{Name: "email", Label: "Email", Type: TypeEmail, Required: true}
	assert.Empty(t, ValidateField(field, Text("jane@example.com")))
	assert.Equal(t, "Please enter a valid email address", ValidateField(field, Text("jane@example")))
	assert.Equal(t, "Please enter a valid email address", ValidateField(field, Text("jane doe@example.com")))
}

func TestValidateField_Tel(t *testing.T) {
	field := FieldSpec{Name: "phone", Label: "Phone", Type: TypeTel, Required: true}
	for _, ok := range []string{"5095551234", "(509) 555-1234", "509-555-1234", "509.555.1234", "(509)5551234"} {
		assert.Empty(t, ValidateField(field, Text(ok)), ok)
	}
	for _, bad := range []string{"555-1234", "+1 509 555 1234", "509555123x"} {
		assert.Equal(t, "Please enter a valid phone number", ValidateField(field, Text(bad)), bad)
	}
}

func TestValidateField_CustomPatternRunsBeforeTypeRule(t *testing.T) {
	field := FieldSpec{
		Name: "email", Label: "Email", Type: TypeEmail,
		Validation: &Validation{Pattern: `.+@acme\.com`, Message: "Use your company address"},
	}
	assert.Equal(t, "Use your company address", ValidateField(field, Text("not-an-email")))
	assert.Equal(t, "Please enter a valid email address", ValidateField(field, Text("a b@acme.com")))
	assert.Empty(t, ValidateField(field, Text("jane@acme.com")))
}

func TestValidateFields_CollectsAllErrorsAndSkipsHidden(t *testing.T) {
	fields := []FieldSpec{
		{Name: "firstName", Label: "First Name", Type: TypeText, Required: true},
		{Name: "email", Label: "Email", Type: TypeEmail, Required: true},
		{
			Name: "needsTarp", Label: "Tarp", Type: TypeRadio, Required: true,
			Options:   []Option{{Value: "yes"}, {Value: "no"}},
			DependsOn: &DependsOn{Field: "roofingService", Value: Text("emergency")},
		},
	}
	errs := ValidateFields(fields, State{"email": Text("bad"), "roofingService": Text("repair")})

	assert.Len(t, errs, 2)
	assert.Equal(t, "First Name is required", errs["firstName"])
	assert.Equal(t, "Please enter a valid email address", errs["email"])
	assert.NotContains(t, errs, "needsTarp")

	errs = ValidateFields(fields, State{
		"firstName": Text("Jane"), "email": Text("jane@example.com"), "roofingService": Text("emergency"),
	})
	assert.Equal(t, Errors{"needsTarp": "Tarp is required"}, errs)
}
