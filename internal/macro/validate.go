package macro

import "errors"

// ErrRequired is returned by Required for empty values.
var ErrRequired = errors.New("this field is required")

// Validator checks one field value.
type Validator func(string) error

// Required rejects empty values. Whitespace counts as a value.
func Required(s string) error {
	if s == "" {
		return ErrRequired
	}
	return nil
}

// ComposeValidators runs validators in order and returns the first error.
func ComposeValidators(validators ...Validator) Validator {
	return func(s string) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// FieldErrors maps field names to validation errors.
type FieldErrors map[string]error

// Validate checks both editable fields of in.
func Validate(in Input) FieldErrors {
	check := ComposeValidators(Required)
	errs := FieldErrors{}
	if err := check(in.Name); err != nil {
		errs["name"] = err
	}
	if err := check(in.Content); err != nil {
		errs["content"] = err
	}
	return errs
}
