package forms

import "errors"

var (
	// ErrUnknownService is returned when no form config is registered for a service id.
	ErrUnknownService = errors.New("forms: unknown service")

	// ErrInvalidConfig is returned when a form config fails the registry consistency checks.
	ErrInvalidConfig = errors.New("forms: invalid config")

	// ErrInvalidStep is returned for a step index outside the two-step wizard.
	ErrInvalidStep = errors.New("forms: invalid step")
)
