package role

import (
	"errors"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	errEmptyAssignment = errors.New("a user must hold at least one role")
	errDuplicateRoles  = errors.New("duplicate roles in assignment")
)

// Assignment is a user's ordered role set; the first element is the
// primary role, the rest are additional roles.
type Assignment []string

func (a Assignment) Primary() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Validate checks that the assignment is non-empty, holds only known roles
// and contains no duplicates.
func (a Assignment) Validate() error {
	if len(a) == 0 {
		return core.NewValidationError(errEmptyAssignment, core.FieldError{Field: "roles", Error: errEmptyAssignment.Error()})
	}
	seen := make(map[string]struct{}, len(a))
	for _, r := range a {
		if !IsKnown(r) {
			return core.NewValidationError(errors.New(allRolesText), core.FieldError{Field: "roles", Error: allRolesText})
		}
		if _, dup := seen[r]; dup {
			return core.NewValidationError(errDuplicateRoles, core.FieldError{Field: "roles", Error: errDuplicateRoles.Error()})
		}
		seen[r] = struct{}{}
	}
	return nil
}

// RegisterValidators registers the role validators on the app validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)
}

// allRolesValidation checks that provided roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	all := make([]string, len(AllRoles))
	copy(all, AllRoles)
	sort.Strings(all)
	for _, role := range roles {
		idx := sort.SearchStrings(all, role)
		if idx >= len(all) || all[idx] != role {
			return false
		}
	}
	return true
}
