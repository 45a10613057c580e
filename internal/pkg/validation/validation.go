package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Errors maps field names to human-readable messages for a failed request.
type Errors map[string]string

func (e Errors) Error() string {
	var msgs []string
	for field, msg := range e {
		msgs = append(msgs, field+": "+msg)
	}
	return strings.Join(msgs, "; ")
}

// Struct validates a request DTO against its `validate` tags and returns
// field-level Errors suitable for the HTTP response layer.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

// Saudi IBAN: "SA" followed by 2 check digits and 20 alphanumerics.
var saudiIBANRegex = regexp.MustCompile(`^SA[0-9A-Z]{22}$`)

// IsValidSaudiIBAN performs the structural account-number check used by the
// pre-flight validator and the bank export. It does not verify the account
// exists, only that the identifier is well-formed.
func IsValidSaudiIBAN(iban string) bool {
	clean := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	return saudiIBANRegex.MatchString(clean)
}

// NormalizeIBAN strips spaces and upper-cases the identifier for export.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
}
