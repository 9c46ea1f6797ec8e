package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

// MaxBodyBytes bounds every JSON request body. Cart payloads are tiny.
const MaxBodyBytes = 64 << 10

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

// DecodeJSONBody decodes a strict JSON body into dest and runs its validate
// tags. An empty body is a validation error.
func DecodeJSONBody(r *http.Request, dest any) error {
	present, err := DecodeOptionalJSONBody(r, dest)
	if err != nil {
		return err
	}
	if !present {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	return nil
}

// DecodeOptionalJSONBody behaves like DecodeJSONBody but reports an empty
// body as absent instead of failing. Validation only runs on present bodies.
func DecodeOptionalJSONBody(r *http.Request, dest any) (bool, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, nil
	}
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return true, decodeError(err)
	}
	if decoder.More() {
		return true, pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}
	if err := validate.Struct(dest); err != nil {
		return true, formatValidationErrors(err)
	}
	return true, nil
}

// decodeError turns encoding/json failures into client facing violations.
func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", tooLarge.Limit)
	case errors.As(err, &syntaxErr):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed JSON")
	case errors.As(err, &typeErr):
		return pkgerrors.Invalid("invalid request body", pkgerrors.Violation{
			Path:    strings.Split(typeErr.Field, "."),
			Message: "must be a " + typeErr.Type.String(),
		})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return pkgerrors.Invalid("invalid request body", pkgerrors.Violation{
			Path:    []string{field},
			Message: "is not allowed",
		})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	violations := make([]pkgerrors.Violation, 0, len(errs))
	for _, fieldErr := range errs {
		violations = append(violations, pkgerrors.Violation{
			Path:    fieldPath(fieldErr),
			Message: validationMessage(fieldErr),
		})
	}
	return pkgerrors.Invalid("validation failed", violations...)
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) []string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return parts
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "iso3166_1_alpha2":
		return "must be a two letter country code"
	}
	return "is invalid"
}
