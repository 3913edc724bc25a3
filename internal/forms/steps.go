package forms

import "fmt"

// StepIndex identifies one of the two wizard steps.
type StepIndex int

const (
	StepServiceDetails StepIndex = 0
	StepContact        StepIndex = 1
)

// Label is the short name used in metrics and logs.
func (i StepIndex) Label() string {
	if i == StepContact {
		return "contact"
	}
	return "service"
}

// Step groups the fields rendered together on one wizard page.
type Step struct {
	Index  StepIndex   `json:"index"`
	Title  string      `json:"title"`
	Fields []FieldSpec `json:"fields"`
}

// Steps splits a config into the service-details step and the contact step.
// The contact step keeps the contact-set order, limited to configured fields.
func Steps(cfg *ServiceConfig) [2]Step {
	details := make([]FieldSpec, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if !IsContactField(f.Name) {
			details = append(details, f)
		}
	}
	contact := make([]FieldSpec, 0, len(ContactFields))
	for _, name := range ContactFields {
		if f, ok := cfg.Field(name); ok {
			contact = append(contact, f)
		}
	}
	return [2]Step{
		{Index: StepServiceDetails, Title: "Service Details", Fields: details},
		{Index: StepContact, Title: "Contact Information", Fields: contact},
	}
}

// StepFields returns the fields of one step.
func StepFields(cfg *ServiceConfig, idx StepIndex) ([]FieldSpec, error) {
	if idx != StepServiceDetails && idx != StepContact {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, idx)
	}
	return Steps(cfg)[idx].Fields, nil
}

// ValidateStep validates the visible fields of one step.
func ValidateStep(cfg *ServiceConfig, idx StepIndex, state State) (Errors, error) {
	fields, err := StepFields(cfg, idx)
	if err != nil {
		return nil, err
	}
	return ValidateFields(fields, state), nil
}
