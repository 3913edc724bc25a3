package forms

import "regexp"

// FieldType enumerates the input kinds a form can render.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypeTel      FieldType = "tel"
	TypeSelect   FieldType = "select"
	TypeRadio    FieldType = "radio"
	TypeCheckbox FieldType = "checkbox"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
)

// HasOptions reports whether the type renders a fixed option list.
func (t FieldType) HasOptions() bool {
	return t == TypeSelect || t == TypeRadio || t == TypeCheckbox
}

func (t FieldType) valid() bool {
	switch t {
	case TypeText, TypeEmail, TypeTel, TypeSelect, TypeRadio, TypeCheckbox, TypeTextarea, TypeNumber, TypeDate:
		return true
	}
	return false
}

// Condition is how a dependent field compares its controlling field's value.
type Condition string

const (
	ConditionEquals    Condition = "equals"
	ConditionIncludes  Condition = "includes"
	ConditionNotEquals Condition = "notEquals"
)

// Option is one choice of a select, radio or checkbox field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Validation is an optional custom pattern applied to the whole value.
type Validation struct {
	Pattern string `json:"pattern"`
	Message string `json:"message,omitempty"`

	re *regexp.Regexp
}

// DependsOn makes a field visible only when another field has a given value.
type DependsOn struct {
	Field     string    `json:"field"`
	Value     Value     `json:"value"`
	Condition Condition `json:"condition,omitempty"`
}

// FieldSpec describes one input of a service form.
type FieldSpec struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Type        FieldType   `json:"type"`
	Required    bool        `json:"required,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Validation  *Validation `json:"validation,omitempty"`
	DependsOn   *DependsOn  `json:"dependsOn,omitempty"`
}

// ServiceConfig is the immutable form definition of one service offering.
type ServiceConfig struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Fields      []FieldSpec `json:"fields"`
}

// Field returns the field named name.
func (c *ServiceConfig) Field(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ContactFields is the fixed set of field names that identify the customer.
// Everything else a form collects is a service detail.
var ContactFields = []string{"firstName", "lastName", "email", "phone", "address", "city", "state", "zipCode"}

var contactFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ContactFields))
	for _, name := range ContactFields {
		set[name] = struct{}{}
	}
	return set
}()

// IsContactField reports whether name belongs to the contact set.
func IsContactField(name string) bool {
	_, ok := contactFieldSet[name]
	return ok
}
