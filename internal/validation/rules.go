// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// currencyRegex matches ISO 4217 style currency codes
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// HTTPURL validates an absolute http or https URL with a host.
var HTTPURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_http_url", "must be an absolute http or https URL"),
)

// Currency validates a three-letter uppercase currency code.
var Currency = validation.NewStringRuleWithError(
	func(s string) bool {
		return currencyRegex.MatchString(s)
	},
	validation.NewError("validation_currency", "must be a three-letter uppercase currency code"),
)

// OneOf validates that a string is one of the allowed values.
type OneOf []string

// Validate checks membership in the allowed set.
func (o OneOf) Validate(value interface{}) error {
	value, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_one_of", "must be a string")
	}
	if s == "" {
		return nil
	}
	for _, allowed := range o {
		if s == allowed {
			return nil
		}
	}
	return validation.NewError("validation_one_of", "must be one of: "+strings.Join(o, ", "))
}

// PositiveDays validates a list of strictly positive day counts.
var PositiveDays = validation.By(func(value interface{}) error {
	days, ok := value.([]int)
	if !ok {
		return validation.NewError("validation_positive_days", "must be a list of integers")
	}
	for _, d := range days {
		if d <= 0 {
			return validation.NewError("validation_positive_days", "must contain only positive day counts")
		}
	}
	return nil
})
