package importer

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"fitnesspoint/internal/member"

	"github.com/go-playground/validator/v10"
)

// memberRow is the typed view of a Row that validation runs against.
type memberRow struct {
	Reference           string `col:"reference" validate:"max=50"`
	Name                string `col:"name" validate:"required,max=255"`
	Gender              string `col:"gender" validate:"omitempty,oneof=male female m f other"`
	NationalID          string `col:"national_id_number" validate:"max=50"`
	DateOfBirth         string `col:"date_of_birth"`
	Phone               string `col:"phone" validate:"max=30"`
	Email               string `col:"email" validate:"omitempty,email,max=255"`
	Address             string `col:"address" validate:"max=500"`
	MembershipStartDate string `col:"membership_start_date" validate:"omitempty,importdate"`
}

func newMemberRow(r Row) memberRow {
	return memberRow{
		Reference:           r.Get(ColReference),
		Name:                r.Get(ColName),
		Gender:              strings.ToLower(r.Get(ColGender)),
		NationalID:          r.Get(ColNationalID),
		DateOfBirth:         r.Get(ColDateOfBirth),
		Phone:               r.Get(ColPhone),
		Email:               r.Get(ColEmail),
		Address:             r.Get(ColAddress),
		MembershipStartDate: r.Get(ColMembershipStartDate),
	}
}

type fieldError struct {
	Field   string
	Message string
}

// rowError folds the field errors of one row into a single RowError. The
// first failing column becomes its Field.
func rowError(row int, errs []fieldError) *RowError {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return &RowError{Row: row, Field: errs[0].Field, Message: strings.Join(msgs, ", ")}
}

func label(col string) string {
	return strings.ReplaceAll(col, "_", " ")
}

func takenMessage(col string) string {
	return fmt.Sprintf("The %s has already been taken.", label(col))
}

func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "importdate":
		return fmt.Sprintf("The %s field must be a valid date.", name)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

type existenceChecker interface {
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	NationalIDExists(ctx context.Context, nationalID string) (bool, error)
}

type rowValidator struct {
	validate *validator.Validate
	members  existenceChecker
}

func newRowValidator(members existenceChecker) *rowValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("col")
	})
	_ = v.RegisterValidation("importdate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	return &rowValidator{validate: v, members: members}
}

// Check validates in and then looks for members that already use its
// reference, email or national id. The error return is reserved for lookup
// failures.
func (rv *rowValidator) Check(ctx context.Context, in memberRow, importType Type) ([]fieldError, error) {
	if importType != TypeIndividual {
		in.MembershipStartDate = ""
	}

	var errs []fieldError
	failed := map[string]bool{}
	if err := rv.validate.Struct(in); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, err
		}
		for _, fe := range verrs {
			failed[fe.Field()] = true
			errs = append(errs, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	}

	uniques := []struct {
		col    string
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{ColEmail, in.Email, rv.members.EmailExists},
		{ColNationalID, in.NationalID, rv.members.NationalIDExists},
		{ColReference, in.Reference, rv.members.ReferenceExists},
	}
	for _, u := range uniques {
		if u.value == "" || failed[u.col] {
			continue
		}
		taken, err := u.exists(ctx, u.value)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", label(u.col), err)
		}
		if taken {
			errs = append(errs, fieldError{Field: u.col, Message: takenMessage(u.col)})
		}
	}

	return errs, nil
}

// constraintColumns maps member unique constraints to the column they guard.
var constraintColumns = map[string]string{
	member.ConstraintReference:  ColReference,
	member.ConstraintEmail:      ColEmail,
	member.ConstraintNationalID: ColNationalID,
}
