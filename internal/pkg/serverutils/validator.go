package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/ingest"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("dotted_version", func(fl validator.FieldLevel) bool {
		return ingest.IsDottedVersion(fl.Field().String())
	})
	return v
}

// ValidateRequest validates req's struct tags and returns apperror.ValidationErrors.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(apperror.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &apperror.ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "dotted_version":
		return fmt.Sprintf("must be dotted numeric (e.g. 1.0.2), got %q", fe.Value())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "base64":
		return "must be base64 encoded"
	}
	return "failed " + fe.Tag() + " validation"
}
