package user

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
)

var (
	errRequiredFields = errors.New("Please fill in all required fields")
	errBranchRequired = errors.New("Please specify your branch")
	errInvalidRole    = errors.New("Please choose the student or teacher role")

	branchRequiredTag  = "branch_required"
	branchRequiredText = "branch is required for students"
)

// RegisterValidators registers the user struct validations on v.
func RegisterValidators(v *core.Validator) {
	v.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	v.RegisterCustomTranslation(branchRequiredTag, branchRequiredText)
}

// newUserStructValidation does NewUser's struct level validation
func newUserStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		if nu.Role == RoleStudent.String() && nu.Branch == "" {
			sl.ReportError(nu.Branch, "branch", "Branch", branchRequiredTag, "")
		}
	}
}

// Validate cleans nu and checks it, mapping field errors to the register form messages.
func (nu *NewUser) Validate(v *core.Validator) error {
	nu.Clean()
	err := v.Struct(nu)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validating NewUser")
	}

	var missing, badRole, noBranch bool
	flds := make([]core.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		switch fe.Tag() {
		case "required":
			missing = true
		case "oneof":
			badRole = true
		case branchRequiredTag:
			noBranch = true
		}
		flds = append(flds, core.FieldError{Field: fe.Field(), Error: fe.Translate(v.Translator)})
	}

	// same precedence as the register form
	cause := errRequiredFields
	switch {
	case missing:
	case badRole:
		cause = errInvalidRole
	case noBranch:
		cause = errBranchRequired
	}
	return core.NewValidationError(cause, flds...)
}
