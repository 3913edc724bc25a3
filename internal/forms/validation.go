package forms

import (
	"fmt"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\(?([0-9]{3})\)?[-. ]?([0-9]{3})[-. ]?([0-9]{4})$`)
)

// Errors maps a field name to the message shown next to it.
type Errors map[string]string

// compile anchors the pattern so it must match the whole value.
func (v *Validation) compile() (*regexp.Regexp, error) {
	if v.re != nil {
		return v.re, nil
	}
	return regexp.Compile(`^(?:` + v.Pattern + `)$`)
}

// ValidateField checks one value and returns the first failing message, or "".
// Order: required, custom pattern, then the email/tel type rule.
func ValidateField(field FieldSpec, value Value) string {
	if value.IsEmpty() {
		if field.Required {
			return fmt.Sprintf("%s is required", field.Label)
		}
		return ""
	}
	if !value.IsText() {
		return ""
	}
	text := value.String()

	if field.Validation != nil && field.Validation.Pattern != "" {
		re, err := field.Validation.compile()
		if err != nil || !re.MatchString(text) {
			return invalidMessage(field)
		}
	}

	switch field.Type {
	case TypeEmail:
		if !emailPattern.MatchString(text) {
			return "Please enter a valid email address"
		}
	case TypeTel:
		if !phonePattern.MatchString(text) {
			return "Please enter a valid phone number"
		}
	}
	return ""
}

func invalidMessage(field FieldSpec) string {
	if field.Validation != nil && field.Validation.Message != "" {
		return field.Validation.Message
	}
	return fmt.Sprintf("Invalid %s", field.Label)
}

// ValidateFields validates every visible field and collects all failures.
// Hidden fields are skipped even when required.
func ValidateFields(fields []FieldSpec, state State) Errors {
	errs := Errors{}
	for _, f := range fields {
		if !IsVisible(f, state) {
			continue
		}
		if msg := ValidateField(f, state.Get(f.Name)); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}
