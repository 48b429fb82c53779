package order

import (
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	validator "github.com/go-playground/validator/v10"
)

// emailPattern matches the format the form accepts: a single @ with no
// whitespace on either side and at least one dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a form field name to a human-readable message. An empty map
// means the draft is valid.
type Errors map[string]string

// OK reports whether no validation errors are present.
func (e Errors) OK() bool {
	return len(e) == 0
}

// SortedFields returns the failing field names in stable order, for
// deterministic rendering.
func (e Errors) SortedFields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Required fields must contain something other than whitespace.
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	// Ordering matters: notblank runs first, so a blank email reports the
	// "required" message rather than the format one.
	must(v.RegisterValidation("form_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// messages holds the user-facing text per field and failed rule.
var messages = map[string]string{
	"customerName/notblank":    "A név megadása kötelező.",
	"customerEmail/notblank":   "Az email cím megadása kötelező.",
	"customerEmail/form_email": "Kérjük, adj meg egy valós email címet.",
	"billingName/notblank":     "A számlázási név megadása kötelező.",
	"billingZip/notblank":      "Az irányítószám megadása kötelező.",
	"billingCity/notblank":     "A város megadása kötelező.",
	"billingAddress/notblank":  "A cím megadása kötelező.",
	"selectedServices/min":     "Legalább egy szolgáltatást ki kell választani.",
	"agreedToTerms/eq":         "Az adatkezelési feltételek elfogadása kötelező.",
}

// Validate checks every rule of the draft independently and returns the full
// field-keyed error set. It never short-circuits: a completely blank draft
// reports every required field at once.
func Validate(d Draft) Errors {
	err := validate.Struct(d)
	if err == nil {
		return Errors{}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"draft": err.Error()}
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		key := fe.Field() + "/" + fe.Tag()
		if msg, ok := messages[key]; ok {
			out[fe.Field()] = msg
		} else {
			out[fe.Field()] = "Érvénytelen érték."
		}
	}
	return out
}

// Submittable is the derived validity flag that gates the submit action.
// It is intentionally redundant with Validate's own rules and must stay
// consistent with them.
func Submittable(d Draft, errs Errors) bool {
	return errs.OK() && d.AgreedToTerms && len(d.SelectedServices) > 0
}
