package core

import (
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const requiredText = "this field is required"

// sharedTranslations replaces the library's default English messages for tags
// used across course, cohort, quiz & user payloads.
// {0} is the JSON field name, {1} the tag parameter.
var sharedTranslations = []struct {
	tag, text string
}{
	{"required", requiredText},
	{"required_with", requiredText},
	{"url", "{0} must be a valid URL"},
	{"max", "{0} must be at most {1} characters long"},
	{"gte", "{0} must be {1} or greater"},
	{"min", "at least {1} {0} are required"},
	{"eqfield", "passwords do not match"},
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, tr := range sharedTranslations {
		RegisterCustomTranslation(validate, translator, tr.tag, tr.text, true)
	}
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// TranslateFieldErrors maps every failing JSON field to its translated message.
// Only the first failure of a field is kept.
func TranslateFieldErrors(errs validator.ValidationErrors, translator ut.Translator) map[string]string {
	fldErrs := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, ok := fldErrs[fe.Field()]; !ok {
			fldErrs[fe.Field()] = fe.Translate(translator)
		}
	}
	return fldErrs
}
