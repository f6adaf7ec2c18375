package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

var (
	// custom validation tags & texts
	cmiElementTag  = "cmielement"
	cmiElementText = "{0} is not a SCORM 1.2 data model element"

	cmiTimespanTag  = "cmitimespan"
	cmiTimespanText = "{0} must be a CMI timespan (HHHH:MM:SS.SS)"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewTranslator returns the english ut.Translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
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

	// register custom validators
	_ = validate.RegisterValidation(cmiElementTag, cmiElementValidation)
	RegisterCustomTranslation(validate, translator, cmiElementTag, cmiElementText)

	_ = validate.RegisterValidation(cmiTimespanTag, cmiTimespanValidation)
	RegisterCustomTranslation(validate, translator, cmiTimespanTag, cmiTimespanText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// NewValidator returns a validator with the custom tags registered against `translator`.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	InitValidators(validate, translator)
	return validate
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
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// cmiElementValidation only allows recognized data model elements, interaction fields included.
func cmiElementValidation(fl validator.FieldLevel) bool {
	element := fl.Field().String()
	if _, ok := cmi.Lookup(element); ok {
		return true
	}
	_, _, ok := cmi.ParseInteraction(element)
	return ok
}

func cmiTimespanValidation(fl validator.FieldLevel) bool {
	return cmi.IsTimespan(fl.Field().String())
}
