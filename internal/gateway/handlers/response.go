package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"orderflow/internal/apperror"
	"orderflow/internal/gateway/middleware"
)

type APIResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    interface{}           `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

func messageResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func validationResponse(message string, fields []apperror.FieldError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Errors:  fields,
	}
}

// bindError turns a gin binding failure into a ValidationError with one
// entry per offending field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   jsonFieldPath(fe.Namespace()),
				Message: describeTag(fe),
			})
		}
		return &apperror.ValidationError{Message: "Validation Error", Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &apperror.ValidationError{
			Message: "Validation Error",
			Fields:  []apperror.FieldError{{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()}},
		}
	}

	return &apperror.ValidationError{Message: "Invalid request format"}
}

var registerTagNames sync.Once

// UseJSONFieldNames makes binding errors report JSON field names instead of
// Go struct field names.
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return ""
		})
	})
}

// jsonFieldPath drops the leading struct name from a validator namespace.
func jsonFieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperror.ValidationError{
			Message: "Validation Error",
			Fields:  []apperror.FieldError{{Field: name, Message: "must be a positive integer"}},
		}
	}
	return id, nil
}

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a bare 500.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, validationResponse(verr.Message, verr.Fields))
		return
	}
	if de, ok := apperror.IsDomain(err); ok {
		c.JSON(http.StatusBadRequest, errorResponse(de.Message))
		return
	}

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, apperror.ErrNotCancellable):
		c.JSON(http.StatusBadRequest, errorResponse("Order cannot be cancelled"))
	case errors.Is(err, apperror.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, apperror.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, apperror.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	default:
		_ = c.Error(err)
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorResponse("Internal Server Error"))
	}
}
