package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes exactly one JSON object into dest and runs its
// validate tags. Unknown fields, an empty body and trailing data are
// VALIDATION_ERROR.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid request body").WithDetails(map[string]any{"error": "unexpected data after JSON object"})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldName(fieldErr)] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

// fieldName keeps element indexes so "media_ids[2]" points at the bad entry.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color such as #1a2b3c"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a UUID"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	}
	return "is invalid"
}
