package validators

import (
	"reflect"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	specialRegex = regexp.MustCompile(`[\\^$*.\[\]{}()?"!@#%&/\\,><':;|_~` + "`" + `=+\-]`)
	hasSpaces    = regexp.MustCompile(`\s+`)
	slugRegex    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// New returns a validator with every custom tag of the application registered.
func New() *validator.Validate {
	validate := validator.New()
	Register(validate)
	return validate
}

func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("hasupper", HasUpper)
	_ = validate.RegisterValidation("haslower", HasLower)
	_ = validate.RegisterValidation("hasdigit", HasDigit)
	_ = validate.RegisterValidation("hasspecial", HasSpecial)
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
	_ = validate.RegisterValidation("slug", Slug)
}

func HasUpper(fl validator.FieldLevel) bool {
	return anyRune(fl, unicode.IsUpper)
}

func HasLower(fl validator.FieldLevel) bool {
	return anyRune(fl, unicode.IsLower)
}

func HasDigit(fl validator.FieldLevel) bool {
	return anyRune(fl, unicode.IsDigit)
}

func HasSpecial(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return specialRegex.MatchString(val)
}

// NoWhiteSpaces returns false if the string contains any whitespace (rejecting the user input).
func NoWhiteSpaces(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	str := field.String()
	return !hasSpaces.MatchString(str)
}

// Slug accepts latin letters, numbers, underscores and hyphens only.
// Combine with 'omitempty' for optional slugs.
func Slug(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return slugRegex.MatchString(field.String())
}

func anyRune(fl validator.FieldLevel, pred func(rune) bool) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	for _, ch := range val {
		if pred(ch) {
			return true
		}
	}
	return false
}
