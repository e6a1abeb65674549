package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	requiredTag  = "required"
	requiredText = "this field is required"
)

// Validator bundles the struct validator with the english translator used to render its errors.
type Validator struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewValidator instantiates a validator with english error messages and the custom global validators.
func NewValidator() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{Validate: validate, Translator: translator}

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	v.RegisterCustomTranslation(notBlankTag, notBlankText)
	v.RegisterCustomTranslation(requiredTag, requiredText, true)
	return v
}

// Struct validates s, returning validator.ValidationErrors on failure.
func (v *Validator) Struct(s interface{}) error {
	return v.Validate.Struct(s)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func (v *Validator) RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.Validate.RegisterTranslation(
		tag, v.Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Translate renders validation errors as a {field: message} map.
// ok is false if err is not a validator.ValidationErrors.
func (v *Validator) Translate(err error) (fields map[string]string, ok bool) {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return nil, false
	}
	fields = make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[fe.Field()] = fe.Translate(v.Translator)
	}
	return fields, true
}

// Custom Global Validators

// notBlankValidation rejects strings made only of whitespace.
func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}
