package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/oneword-blog-backend/errs"
)

const maxBodyBytes int64 = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a size capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxBodyBytes)
		}
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

// validateStruct reports the first failing field of a tagged request struct.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewMalformedPayloadError("request", err)
	}

	fe := fieldErrs[0]
	field := jsonFieldName(fe.Namespace())
	if fe.Tag() == "required" {
		return errs.NewMissingRequiredFieldError(field)
	}
	return errs.NewInvalidFieldError(field, "must satisfy "+fe.Tag()+"="+fe.Param())
}

// jsonFieldName turns "createBlogRequest.Tags[3]" into "tags[3]".
func jsonFieldName(namespace string) string {
	if _, after, ok := strings.Cut(namespace, "."); ok {
		namespace = after
	}
	return strings.ToLower(namespace)
}
